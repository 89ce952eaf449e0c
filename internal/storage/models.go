package storage

import "time"

// Run is the summary of one crawl, kept in the history database.
// The link graph itself is not stored.
type Run struct {
	RunID             string
	Seeds             []string
	MaxPages          int
	StartedAt         time.Time
	EndedAt           time.Time
	PagesCrawled      int
	LinksRecorded     int
	PagesFailed       int
	TrianglesFound    int
	TerminationReason string
}
