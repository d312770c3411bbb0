// Package repository persists interest profile snapshots.
//
// A snapshot is tab-separated text, one "category<TAB>affinity" record per
// line. Blank lines and lines starting with '#' are ignored, so categories
// beginning with '#' or holding tabs or quotes are written as quoted fields.
package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const header = "# discovery interest profile: category\taffinity"

// Store reads and writes whole-profile snapshots.
type Store interface {
	Save(ctx context.Context, scores map[string]float64) error

	// Load returns ErrNotFound when no snapshot exists yet.
	Load(ctx context.Context) (map[string]float64, error)
}

// Write encodes scores to w, sorted by category.
func Write(w io.Writer, scores map[string]float64) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(header + "\n")
	for _, category := range slices.Sorted(maps.Keys(scores)) {
		if category == "" {
			continue
		}
		bw.WriteString(quoteField(category))
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatFloat(scores[category], 'g', -1, 64))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// quoteField quotes categories Read would otherwise split, reject or skip as
// a comment.
func quoteField(s string) string {
	if !strings.HasPrefix(s, "#") && !strings.ContainsAny(s, "\t\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 2

	scores := make(map[string]float64)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return scores, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotFormat, err)
		}
		line, _ := cr.FieldPos(1)
		affinity, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSnapshotFormat, line, err)
		}
		if rec[0] == "" {
			return nil, fmt.Errorf("%w: line %d: empty category", ErrSnapshotFormat, line)
		}
		scores[rec[0]] = affinity
	}
}
