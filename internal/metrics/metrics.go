package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	PagesClaimed      int       `json:"pages_claimed"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesFailed       int       `json:"pages_failed"`
	PagesSkipped      int       `json:"pages_skipped"`
	LinksRecorded     int       `json:"links_recorded"`
	TrianglesFound    int       `json:"triangles_found"`
	TotalFetchTimeMs  int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs    int64     `json:"avg_fetch_time_ms"`
	TerminationReason string    `json:"termination_reason"`
}

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu               sync.Mutex
	data             Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementPagesClaimed counts a page taken from the frontier for fetching
func (t *Tracker) IncrementPagesClaimed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesClaimed++
}

// IncrementPagesFetched increments the successful fetch counter
func (t *Tracker) IncrementPagesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched++
}

// IncrementPagesFailed increments the failed fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// IncrementPagesSkipped counts fetched pages that were not HTML
func (t *Tracker) IncrementPagesSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesSkipped++
}

// AddLinksRecorded adds to the edge counter
func (t *Tracker) AddLinksRecorded(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksRecorded += n
}

// SetTrianglesFound stores the size of the triangle report
func (t *Tracker) SetTrianglesFound(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.TrianglesFound = n
}

// RecordFetchTime records a page fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// Finish stamps the end time and termination reason, returning the final metrics
func (t *Tracker) Finish(reason string) Metrics {
	t.mu.Lock()
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.mu.Unlock()

	return t.GetSnapshot()
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path string) error {
	jsonData, err := json.MarshalIndent(t.GetSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for periodic log lines
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Pages: %d claimed, %d fetched, %d failed, %d skipped | Links: %d",
		t.data.PagesClaimed,
		t.data.PagesFetched,
		t.data.PagesFailed,
		t.data.PagesSkipped,
		t.data.LinksRecorded,
	)
}
