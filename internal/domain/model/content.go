// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/discovery/internal/domain/fieldpath"
)

// User is the acting viewer or a content author.
type User struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name,omitempty"`
	Following []string `json:"following,omitempty"`
}

// Follows reports whether u follows the user with the given id.
func (u User) Follows(id string) bool {
	return slices.Contains(u.Following, id)
}

// ContentItem is a post or explore item with its engagement counters.
// EngagementScore and TrendingScore are derived and recomputed on every call.
type ContentItem struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Category  string    `json:"category,omitempty"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	CreatedAt time.Time `json:"created_at"`

	EngagementScore float64 `json:"engagement_score"`
	TrendingScore   float64 `json:"trending_score"`
}

// contentWire is the encoded form of ContentItem. An unset CreatedAt is
// omitted rather than written as the zero time.
type contentWire struct {
	ID              string     `json:"id"`
	Author          User       `json:"author"`
	Title           string     `json:"title,omitempty"`
	Content         string     `json:"content,omitempty"`
	Category        string     `json:"category,omitempty"`
	Likes           int        `json:"likes"`
	Comments        int        `json:"comments"`
	Shares          int        `json:"shares"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	EngagementScore float64    `json:"engagement_score"`
	TrendingScore   float64    `json:"trending_score"`
}

// MarshalJSON implements json.Marshaler.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	w := contentWire{
		ID:              c.ID,
		Author:          c.Author,
		Title:           c.Title,
		Content:         c.Content,
		Category:        c.Category,
		Likes:           c.Likes,
		Comments:        c.Comments,
		Shares:          c.Shares,
		EngagementScore: c.EngagementScore,
		TrendingScore:   c.TrendingScore,
	}
	if c.HasTimestamp() {
		ts := c.CreatedAt
		w.CreatedAt = &ts
	}
	return json.Marshal(w)
}

// HasTimestamp reports whether the caller supplied a creation time.
func (c ContentItem) HasTimestamp() bool {
	return !c.CreatedAt.IsZero()
}

// Validate rejects items that engines must never see.
func (c ContentItem) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: item id is empty", ErrInvalidInput)
	case c.Likes < 0, c.Comments < 0, c.Shares < 0:
		return fmt.Errorf("%w: item %s has negative counters", ErrInvalidInput, c.ID)
	}
	return nil
}

// Document exposes the item to dotted field-path lookups.
func (c ContentItem) Document() fieldpath.Value {
	return fieldpath.Obj(map[string]fieldpath.Value{
		"id":       fieldpath.Str(c.ID),
		"title":    fieldpath.Str(c.Title),
		"content":  fieldpath.Str(c.Content),
		"category": fieldpath.Str(c.Category),
		"likes":    fieldpath.Num(float64(c.Likes)),
		"comments": fieldpath.Num(float64(c.Comments)),
		"shares":   fieldpath.Num(float64(c.Shares)),
		"author": fieldpath.Obj(map[string]fieldpath.Value{
			"id":   fieldpath.Str(c.Author.ID),
			"name": fieldpath.Str(c.Author.Name),
		}),
	})
}

// ValidateItems checks every item and stops at the first failure.
func ValidateItems(items []ContentItem) error {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}
