package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alvmarrod/triangle-weaver/internal/graph"
)

// ErrUnknownFormat is returned by New for an unsupported report format
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the accepted report format names
var Formats = []string{"text", "markdown", "json"}

// NodeSummary is one line of the graph summary
type NodeSummary struct {
	URL   string `json:"url"`
	Links int    `json:"links"`
}

// Summary is everything a report renders
type Summary struct {
	Nodes     []NodeSummary `json:"nodes"`
	Triangles [][3]string   `json:"triangles"`
}

// NewSummary builds a report summary from a graph snapshot and its triangles
func NewSummary(snap graph.Snapshot, triangles []graph.Triangle) *Summary {
	s := &Summary{
		Nodes:     make([]NodeSummary, 0, len(snap)),
		Triangles: make([][3]string, 0, len(triangles)),
	}
	for url, links := range snap {
		s.Nodes = append(s.Nodes, NodeSummary{URL: url, Links: links.Len()})
	}
	sort.Slice(s.Nodes, func(i, j int) bool { return s.Nodes[i].URL < s.Nodes[j].URL })

	for _, t := range triangles {
		s.Triangles = append(s.Triangles, [3]string(t))
	}
	return s
}

// Writer renders a summary
type Writer interface {
	Write(s *Summary) error
}

// New returns the writer for the named format
func New(format string, out io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TextWriter{out: out}, nil
	case "markdown", "md":
		return &MarkdownWriter{out: out}, nil
	case "json":
		return &JSONWriter{out: out}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

// TextWriter prints the plain console report
type TextWriter struct {
	out io.Writer
}

// Write prints the link graph followed by the triangles found
func (w *TextWriter) Write(s *Summary) error {
	var b strings.Builder

	b.WriteString("\n====== LINK GRAPH ======\n")
	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "%s -> %d links\n", n.URL, n.Links)
	}

	b.WriteString("\n====== TRIANGLES ======\n")
	if len(s.Triangles) == 0 {
		b.WriteString("No triangular link patterns found.\n")
	} else {
		b.WriteString("Found Triangles:\n")
		for _, t := range s.Triangles {
			fmt.Fprintf(&b, "A → B → C → A : %s\n", graph.Triangle(t))
		}
	}

	_, err := io.WriteString(w.out, b.String())
	return err
}

// JSONWriter prints the summary as indented JSON
type JSONWriter struct {
	out io.Writer
}

// Write encodes the summary as indented JSON
func (w *JSONWriter) Write(s *Summary) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
