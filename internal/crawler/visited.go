package crawler

import (
	"sort"
	"sync"
)

// ClaimResult is the outcome of VisitedSet.Claim
type ClaimResult int

const (
	// Claimed means the caller now owns the URL and must fetch it
	Claimed ClaimResult = iota
	// AlreadyVisited means another claim won; the entry is discarded
	AlreadyVisited
	// BudgetExhausted means the page budget is spent; nothing more may be claimed
	BudgetExhausted
)

func (r ClaimResult) String() string {
	switch r {
	case Claimed:
		return "claimed"
	case AlreadyVisited:
		return "already_visited"
	case BudgetExhausted:
		return "budget_exhausted"
	default:
		return "unknown"
	}
}

// VisitedSet records every URL claimed for fetching, capped at the page budget.
// It only grows.
type VisitedSet struct {
	limit int
	mu    sync.RWMutex
	urls  map[string]struct{}
}

// NewVisitedSet creates a visited set holding at most limit URLs
func NewVisitedSet(limit int) *VisitedSet {
	return &VisitedSet{
		limit: limit,
		urls:  make(map[string]struct{}),
	}
}

// Claim atomically checks the budget and the set, inserting u on success.
// Two callers can never both get Claimed for the same URL, and the set never
// grows past the limit.
func (vs *VisitedSet) Claim(u string) ClaimResult {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if len(vs.urls) >= vs.limit {
		return BudgetExhausted
	}

	if _, exists := vs.urls[u]; exists {
		return AlreadyVisited
	}

	vs.urls[u] = struct{}{}
	return Claimed
}

// Contains reports whether u has been claimed
func (vs *VisitedSet) Contains(u string) bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	_, exists := vs.urls[u]
	return exists
}

// Full reports whether the budget has been spent
func (vs *VisitedSet) Full() bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.urls) >= vs.limit
}

// Len returns the number of claimed URLs
func (vs *VisitedSet) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.urls)
}

// List returns the claimed URLs in lexical order
func (vs *VisitedSet) List() []string {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	out := make([]string, 0, len(vs.urls))
	for u := range vs.urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
