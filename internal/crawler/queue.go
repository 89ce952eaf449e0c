package crawler

import (
	"sync"
)

// Queue is the crawl frontier: a thread-safe FIFO of normalized URLs.
// It does not deduplicate; the VisitedSet does that on dequeue.
//
// Pop hands out work and counts it as active until Done is called. While the
// queue is empty but work is active, Pop blocks, because an active page may
// still push its links.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []string
	active  int
	stopped bool
}

// NewQueue creates a new frontier queue
func NewQueue() *Queue {
	q := &Queue{
		items: make([]string, 0),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a URL. Returns false once the queue has been stopped.
func (q *Queue) Push(u string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}

	q.items = append(q.items, u)
	q.cond.Signal()

	return true
}

// Pop removes and returns the oldest entry, blocking while the queue is
// empty and other entries are still being processed.
// Returns ("", false) when the crawl is over: stopped, or empty with
// nothing active.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.stopped {
			return "", false
		}

		if len(q.items) > 0 {
			u := q.items[0]
			q.items = q.items[1:]
			q.active++
			return u, true
		}

		if q.active == 0 {
			// Nothing left and nobody can produce more
			q.cond.Broadcast()
			return "", false
		}

		q.cond.Wait()
	}
}

// Done marks an entry returned by Pop as fully processed
func (q *Queue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.active--
	if q.active == 0 && len(q.items) == 0 {
		q.cond.Broadcast()
	}
}

// IsEmpty returns true if the queue has no pending items
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Size returns the current number of pending items
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stop ends the crawl: pending entries are discarded, further pushes are
// rejected and every worker blocked in Pop returns false.
// Entries already handed out may still finish and call Done.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.items = nil
	q.cond.Broadcast()
}
