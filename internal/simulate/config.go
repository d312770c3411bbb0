// Package simulate drives a running discovery service with synthetic
// traffic and checks the ordering guarantees of its responses.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Items          int           // Catalog size
	Authors        int           // Distinct authors in the catalog
	Categories     []string      // Category tags to draw from
	Interactions   int           // Interactions to submit
	DuplicateEvery int           // Replay every Nth interaction; 0 disables
	BatchSize      int           // Interactions per batch request
	Workers        int           // Concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	SettleTimeout  time.Duration // How long to wait for the queue to drain
	Seed           uint64        // Seed for catalog and traffic generation
	Query          string        // Search query used during verification
	OutputFile     string        // Optional JSON dump of the catalog
	Verbose        bool          // Log every batch
}

// DefaultConfig returns a small run against a local service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:9080",
		Items:          500,
		Authors:        50,
		Categories:     []string{"tech", "outdoors", "food", "music", "travel", "sports"},
		Interactions:   5000,
		DuplicateEvery: 20,
		BatchSize:      100,
		Workers:        4,
		Timeout:        10 * time.Second,
		SettleTimeout:  30 * time.Second,
		Seed:           42,
		Query:          "trail",
	}
}

// Stats holds run statistics.
type Stats struct {
	ItemsGenerated        int
	InteractionsGenerated int
	BatchesSubmitted      int
	InteractionsAccepted  int
	InteractionsRejected  int
	BatchesFailed         int
	ChecksPassed          int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
