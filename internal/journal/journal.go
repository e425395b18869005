// Package journal keeps a history of fragment loads in SQLite so the
// preview server and the CLI can show what was fetched, from where and
// with what result.
package journal

import "time"

// Entry is a single recorded load.
type Entry struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Page       string    `json:"page"`
	URL        string    `json:"url"`
	Depth      int       `json:"depth"`
	Bytes      int       `json:"bytes"`
	DurationMS int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	Page   string
	Status string
	Since  *time.Time
	Limit  int
	Offset int
}

// Summary aggregates entries per status.
type Summary struct {
	Total  int            `json:"total"`
	Status map[string]int `json:"status"`
}
