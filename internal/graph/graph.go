package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNodeExists is returned when a node's edge set is written a second time
var ErrNodeExists = errors.New("node already recorded")

// LinkSet is a set of normalized URLs
type LinkSet map[string]struct{}

// NewLinkSet builds a set from the given URLs
func NewLinkSet(urls ...string) LinkSet {
	s := make(LinkSet, len(urls))
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

// Add inserts u into the set
func (s LinkSet) Add(u string) {
	s[u] = struct{}{}
}

// Contains reports whether u is a member
func (s LinkSet) Contains(u string) bool {
	_, ok := s[u]
	return ok
}

// Len returns the number of members
func (s LinkSet) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order
func (s LinkSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set
func (s LinkSet) Clone() LinkSet {
	c := make(LinkSet, len(s))
	for u := range s {
		c[u] = struct{}{}
	}
	return c
}

// Snapshot is an immutable view of a LinkGraph: node -> outbound links
type Snapshot map[string]LinkSet

// LinkGraph holds the crawled link graph in memory.
// Every key is a page that was fetched; edge targets may or may not be keys.
type LinkGraph struct {
	nodes map[string]LinkSet
	mu    sync.RWMutex
}

// NewLinkGraph creates a new in-memory link graph
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		nodes: make(map[string]LinkSet),
	}
}

// SetLinks records the outbound links of a fetched page.
// A node is written exactly once; the set is copied before it is published
// so readers never observe it partially populated.
func (g *LinkGraph) SetLinks(node string, links LinkSet) error {
	published := links.Clone()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[node]; exists {
		return fmt.Errorf("%w: %s", ErrNodeExists, node)
	}

	g.nodes[node] = published
	return nil
}

// Links returns a copy of a node's outbound links
func (g *LinkGraph) Links(node string) (LinkSet, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	links, exists := g.nodes[node]
	if !exists {
		return nil, false
	}
	return links.Clone(), true
}

// HasNode reports whether the page was fetched and recorded
func (g *LinkGraph) HasNode(node string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[node]
	return exists
}

// Nodes returns the recorded pages in lexical order
func (g *LinkGraph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.nodes))
	for node := range g.nodes {
		out = append(out, node)
	}
	sort.Strings(out)
	return out
}

// GetStats returns current graph statistics
func (g *LinkGraph) GetStats() (nodeCount, edgeCount int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, links := range g.nodes {
		edgeCount += len(links)
	}
	return len(g.nodes), edgeCount
}

// Snapshot returns an immutable copy of the graph.
// Published edge sets are never mutated, so they are shared, not copied.
func (g *LinkGraph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := make(Snapshot, len(g.nodes))
	for node, links := range g.nodes {
		snap[node] = links
	}
	return snap
}
