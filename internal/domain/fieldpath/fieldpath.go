// Package fieldpath resolves dotted field paths such as "author.name" over a
// small tagged-union document model. Lookups are best effort: any miss along
// the path resolves to Null and never fails.
package fieldpath

import "strings"

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	Null Kind = iota
	String
	Number
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Object:
		return "object"
	default:
		return "null"
	}
}

// Value is a node in a document tree.
type Value struct {
	kind   Kind
	str    string
	num    float64
	fields map[string]Value
}

// NullValue is the zero Value.
var NullValue = Value{}

// Str wraps a string leaf.
func Str(s string) Value { return Value{kind: String, str: s} }

// Num wraps a numeric leaf.
func Num(n float64) Value { return Value{kind: Number, num: n} }

// Obj wraps a set of named children. A nil map is a valid empty object.
func Obj(fields map[string]Value) Value { return Value{kind: Object, fields: fields} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == Null }

// Text returns the string for String leaves only.
func (v Value) Text() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// Number returns the float for Number leaves only.
func (v Value) Number() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Field returns the named child of an Object, or Null.
func (v Value) Field(name string) Value {
	if v.kind != Object {
		return NullValue
	}
	child, ok := v.fields[name]
	if !ok {
		return NullValue
	}
	return child
}

// Resolve walks a dotted path from root. Empty segments ("a..b", ".a")
// never match.
func Resolve(root Value, path string) Value {
	if path == "" {
		return NullValue
	}
	cur := root
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return NullValue
		}
		cur = cur.Field(seg)
		if cur.IsNull() {
			return NullValue
		}
	}
	return cur
}

// Document is anything that can expose itself as a Value tree.
type Document interface {
	Document() Value
}
