package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/alvmarrod/triangle-weaver/internal/config"
	"github.com/alvmarrod/triangle-weaver/internal/graph"
	"github.com/sirupsen/logrus"
)

// Recorder receives crawl counters. metrics.Tracker implements it.
type Recorder interface {
	IncrementPagesClaimed()
	IncrementPagesFetched()
	IncrementPagesFailed()
	IncrementPagesSkipped()
	AddLinksRecorded(n int)
	RecordFetchTime(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) IncrementPagesClaimed()        {}
func (nopRecorder) IncrementPagesFetched()        {}
func (nopRecorder) IncrementPagesFailed()         {}
func (nopRecorder) IncrementPagesSkipped()        {}
func (nopRecorder) AddLinksRecorded(int)          {}
func (nopRecorder) RecordFetchTime(time.Duration) {}

// Crawler drives a bounded breadth-first crawl and builds the link graph
type Crawler struct {
	cfg       *config.Config
	extractor LinkExtractor
	recorder  Recorder
}

// crawlState is the frontier/visited/graph triple of a single Crawl call
type crawlState struct {
	queue   *Queue
	visited *VisitedSet
	graph   *graph.LinkGraph
}

// NewCrawler creates a new crawler instance
func NewCrawler(cfg *config.Config, extractor LinkExtractor, recorder Recorder) *Crawler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Crawler{
		cfg:       cfg,
		extractor: extractor,
		recorder:  recorder,
	}
}

// Crawl visits at most MaxPages pages breadth-first from the seeds and
// returns the resulting link graph. Fetch failures never abort the crawl.
// When ctx is cancelled the partial graph is returned together with ctx.Err().
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (*graph.LinkGraph, error) {
	st := &crawlState{
		queue:   NewQueue(),
		visited: NewVisitedSet(c.cfg.MaxPages),
		graph:   graph.NewLinkGraph(),
	}

	for _, seed := range seeds {
		st.queue.Push(Normalize(seed))
	}

	workers := c.cfg.ConcurrentWorkers
	if workers < 1 {
		workers = 1
	}

	logrus.Infof("Starting crawl: %d seeds, budget=%d pages, workers=%d", len(seeds), c.cfg.MaxPages, workers)

	// Cancellation stops the frontier; in-flight fetches drain on their own
	crawlDone := make(chan struct{})
	defer close(crawlDone)
	go func() {
		select {
		case <-ctx.Done():
			logrus.Warnf("Crawl cancelled: %v", ctx.Err())
			st.queue.Stop()
		case <-crawlDone:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go c.worker(ctx, i+1, st, &wg)
	}
	wg.Wait()

	nodes, edges := st.graph.GetStats()
	logrus.Infof("Crawl finished: %d pages visited, %d nodes, %d edges", st.visited.Len(), nodes, edges)

	if err := ctx.Err(); err != nil {
		return st.graph, err
	}
	return st.graph, nil
}

// worker processes frontier entries until the crawl is over
func (c *Crawler) worker(ctx context.Context, id int, st *crawlState, wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("Worker %d started", id)

	for {
		current, ok := st.queue.Pop()
		if !ok {
			logrus.Debugf("Worker %d: frontier closed, exiting", id)
			return
		}

		c.visit(ctx, id, current, st)
		st.queue.Done()
	}
}

// visit claims, fetches and records a single page
func (c *Crawler) visit(ctx context.Context, id int, current string, st *crawlState) {
	if ctx.Err() != nil {
		return
	}

	switch st.visited.Claim(current) {
	case AlreadyVisited:
		logrus.Debugf("Worker %d: %s already visited, skipping", id, current)
		return
	case BudgetExhausted:
		logrus.Debugf("Worker %d: page budget exhausted, stopping frontier", id)
		st.queue.Stop()
		return
	}

	c.recorder.IncrementPagesClaimed()
	logrus.Infof("Crawling: %s", current)

	links := c.extractor.ExtractLinks(ctx, current)
	if err := st.graph.SetLinks(current, links); err != nil {
		// Claim guarantees a single writer per node
		logrus.Errorf("Worker %d: %v", id, err)
		return
	}
	c.recorder.AddLinksRecorded(links.Len())

	// Pages finishing after the budget is spent record edges but add no work
	if st.visited.Full() {
		return
	}

	for _, link := range links.Sorted() {
		if !st.visited.Contains(link) {
			st.queue.Push(link)
		}
	}
}
