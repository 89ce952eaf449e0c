package graph

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Triangle is a directed 3-cycle a→b→c→a stored as its members sorted,
// so every rotation of the same cycle maps to one value.
type Triangle [3]string

func newTriangle(a, b, c string) Triangle {
	t := Triangle{a, b, c}
	sort.Strings(t[:])
	return t
}

func (t Triangle) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t[0], t[1], t[2])
}

// FindTriangles enumerates the unique 3-cycles of a completed graph.
// Only recorded nodes take part: b and c must be keys of the snapshot, and
// a, b and c must be pairwise distinct. The outer loop is split across
// goroutines; the result is sorted.
func FindTriangles(snap Snapshot) []Triangle {
	var (
		mu    sync.Mutex
		found = make(map[Triangle]struct{})
	)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for a, outbound := range snap {
		g.Go(func() error {
			local := trianglesFrom(snap, a, outbound)
			if len(local) == 0 {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, t := range local {
				found[t] = struct{}{}
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	out := make([]Triangle, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

func trianglesFrom(snap Snapshot, a string, outbound LinkSet) []Triangle {
	var local []Triangle
	for b := range outbound {
		bLinks, ok := snap[b]
		if !ok || b == a {
			continue
		}
		for c := range bLinks {
			cLinks, ok := snap[c]
			if !ok || c == b || c == a {
				continue
			}
			if cLinks.Contains(a) {
				local = append(local, newTriangle(a, b, c))
			}
		}
	}
	return local
}
