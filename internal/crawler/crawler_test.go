package crawler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alvmarrod/triangle-weaver/internal/config"
	"github.com/alvmarrod/triangle-weaver/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWeb serves links from a static map or a generator and records every fetch
type fakeWeb struct {
	mu       sync.Mutex
	pages    map[string][]string
	generate func(page string) []string
	delay    time.Duration
	calls    map[string]int
	order    []string
}

func newFakeWeb(pages map[string][]string) *fakeWeb {
	return &fakeWeb{pages: pages, calls: make(map[string]int)}
}

func (f *fakeWeb) ExtractLinks(ctx context.Context, pageURL string) graph.LinkSet {
	f.mu.Lock()
	f.calls[pageURL]++
	f.order = append(f.order, pageURL)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	var hrefs []string
	if f.generate != nil {
		hrefs = f.generate(pageURL)
	} else {
		hrefs = f.pages[pageURL]
	}

	links := graph.NewLinkSet()
	for _, h := range hrefs {
		links.Add(Normalize(h))
	}
	return links
}

func (f *fakeWeb) fetchCounts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.calls))
	for k, v := range f.calls {
		out[k] = v
	}
	return out
}

func testConfig(maxPages, workers int) *config.Config {
	cfg := config.Default()
	cfg.MaxPages = maxPages
	cfg.ConcurrentWorkers = workers
	return cfg
}

// infinitePage links page n to pages n+1 and 2n, and back to the root
func infinitePage(page string) []string {
	var n int
	fmt.Sscanf(page, "https://inf.test/%d", &n)
	return []string{
		fmt.Sprintf("https://inf.test/%d", n+1),
		fmt.Sprintf("https://inf.test/%d/", 2*n),
		"https://inf.test/0",
	}
}

func TestCrawlExampleTriangle(t *testing.T) {
	web := newFakeWeb(map[string][]string{
		"https://x.test/a": {"https://x.test/b", "https://x.test/c/"},
		"https://x.test/b": {"https://x.test/c#frag"},
		"https://x.test/c": {"https://x.test/a"},
	})

	g, err := NewCrawler(testConfig(10, 1), web, nil).Crawl(context.Background(), []string{"https://x.test/a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://x.test/a", "https://x.test/b", "https://x.test/c"}, g.Nodes())
	assert.Equal(t,
		[]graph.Triangle{{"https://x.test/a", "https://x.test/b", "https://x.test/c"}},
		graph.FindTriangles(g.Snapshot()))
}

func TestCrawlBreadthFirstOrder(t *testing.T) {
	web := newFakeWeb(map[string][]string{
		"https://s.test/1":   {"https://s.test/1/a", "https://s.test/1/b"},
		"https://s.test/2":   {"https://s.test/2/a"},
		"https://s.test/1/a": {"https://s.test/deep"},
	})

	seeds := []string{"https://s.test/1/", "https://s.test/2", "https://s.test/1"}
	_, err := NewCrawler(testConfig(30, 1), web, nil).Crawl(context.Background(), seeds)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://s.test/1",
		"https://s.test/2",
		"https://s.test/1/a",
		"https://s.test/1/b",
		"https://s.test/2/a",
		"https://s.test/deep",
	}, web.order)
}

func TestCrawlRespectsBudget(t *testing.T) {
	for _, workers := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			web := newFakeWeb(nil)
			web.generate = infinitePage

			g, err := NewCrawler(testConfig(30, workers), web, nil).Crawl(context.Background(), []string{"https://inf.test/1"})
			require.NoError(t, err)

			nodes, _ := g.GetStats()
			assert.Equal(t, 30, nodes)
			assert.Len(t, web.fetchCounts(), 30)
		})
	}
}

func TestCrawlFetchesEachURLAtMostOnce(t *testing.T) {
	// Dense graph: every page links to every other page and itself
	const size = 40
	pages := make(map[string][]string, size)
	var all []string
	for i := 0; i < size; i++ {
		all = append(all, fmt.Sprintf("https://dense.test/%d", i))
	}
	for _, p := range all {
		pages[p] = all
	}

	web := newFakeWeb(pages)
	web.delay = time.Millisecond

	g, err := NewCrawler(testConfig(100, 8), web, nil).Crawl(context.Background(), all[:5])
	require.NoError(t, err)

	counts := web.fetchCounts()
	assert.Len(t, counts, size)
	for u, n := range counts {
		assert.Equal(t, 1, n, "%s fetched %d times", u, n)
	}
	nodes, edges := g.GetStats()
	assert.Equal(t, size, nodes)
	assert.Equal(t, size*size, edges)
}

func TestCrawlTerminatesOnCycles(t *testing.T) {
	web := newFakeWeb(map[string][]string{
		"https://loop.test/a": {"https://loop.test/b"},
		"https://loop.test/b": {"https://loop.test/a", "https://loop.test/b"},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		g, err := NewCrawler(testConfig(30, 3), web, nil).Crawl(context.Background(), []string{"https://loop.test/a"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"https://loop.test/a", "https://loop.test/b"}, g.Nodes())
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("crawl did not terminate")
	}
}

func TestCrawlZeroBudget(t *testing.T) {
	web := newFakeWeb(map[string][]string{"https://x.test/a": {"https://x.test/b"}})

	g, err := NewCrawler(testConfig(0, 2), web, nil).Crawl(context.Background(), []string{"https://x.test/a"})
	require.NoError(t, err)

	assert.Empty(t, g.Nodes())
	assert.Empty(t, web.fetchCounts())
}

func TestCrawlNoSeeds(t *testing.T) {
	web := newFakeWeb(nil)

	g, err := NewCrawler(testConfig(5, 2), web, nil).Crawl(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, g.Nodes())
}

func TestCrawlFailedPagesHaveNoEdges(t *testing.T) {
	// Pages missing from the map behave like failed fetches
	web := newFakeWeb(map[string][]string{
		"https://x.test/a": {"https://x.test/missing", "https://x.test/b"},
		"https://x.test/b": {},
	})

	g, err := NewCrawler(testConfig(10, 1), web, nil).Crawl(context.Background(), []string{"https://x.test/a"})
	require.NoError(t, err)

	links, ok := g.Links("https://x.test/missing")
	require.True(t, ok, "failed pages are still recorded as nodes")
	assert.Zero(t, links.Len())
	assert.Len(t, g.Nodes(), 3)
}

func TestCrawlBudgetBoundaryLeavesDanglingEdges(t *testing.T) {
	web := newFakeWeb(map[string][]string{
		"https://x.test/a": {"https://x.test/b", "https://x.test/c"},
	})

	g, err := NewCrawler(testConfig(1, 1), web, nil).Crawl(context.Background(), []string{"https://x.test/a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://x.test/a"}, g.Nodes())
	links, _ := g.Links("https://x.test/a")
	assert.Equal(t, []string{"https://x.test/b", "https://x.test/c"}, links.Sorted())
}

func TestCrawlCancelled(t *testing.T) {
	web := newFakeWeb(nil)
	web.generate = infinitePage
	web.delay = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	g, err := NewCrawler(testConfig(1000, 2), web, nil).Crawl(ctx, []string{"https://inf.test/1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, g)

	nodes, _ := g.GetStats()
	assert.Less(t, nodes, 1000)
}

type countingRecorder struct {
	nopRecorder
	mu      sync.Mutex
	claimed int
	links   int
}

func (r *countingRecorder) IncrementPagesClaimed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed++
}

func (r *countingRecorder) AddLinksRecorded(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links += n
}

func TestCrawlReportsToRecorder(t *testing.T) {
	web := newFakeWeb(map[string][]string{
		"https://x.test/a": {"https://x.test/b", "https://x.test/c"},
		"https://x.test/b": {"https://x.test/a"},
	})
	rec := &countingRecorder{}

	_, err := NewCrawler(testConfig(10, 1), web, rec).Crawl(context.Background(), []string{"https://x.test/a"})
	require.NoError(t, err)

	assert.Equal(t, 3, rec.claimed)
	assert.Equal(t, 3, rec.links)
}
