// Package types contains common types used across the application
package types

// InterestEntry is one row of a user's top interests.
type InterestEntry struct {
	Rank     int     `json:"rank"`
	Category string  `json:"category"`
	Affinity float64 `json:"affinity"`
}
