package preview

import (
	"context"
	"time"
)

// Status is the outcome of a single load.
type Status string

const (
	StatusLoaded        Status = "loaded"
	StatusFailed        Status = "failed"
	StatusDiscarded     Status = "discarded"
	StatusDepthExceeded Status = "depth_exceeded"
)

// Load records what happened to one trigger element.
type Load struct {
	ID       string
	Page     string
	URL      string
	Depth    int
	Bytes    int
	Duration time.Duration
	Status   Status
	Error    string
	At       time.Time
}

// Report summarises a session run.
type Report struct {
	Page  string
	Loads []Load
}

// Count returns the number of loads with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, l := range r.Loads {
		if l.Status == s {
			n++
		}
	}
	return n
}

// Recorder persists loads as they happen.
type Recorder interface {
	Record(ctx context.Context, l Load) error
}
