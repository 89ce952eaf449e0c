package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter renders the report as GitHub-flavored markdown
type MarkdownWriter struct {
	out io.Writer
}

// Write renders the graph and triangle tables
func (w *MarkdownWriter) Write(s *Summary) error {
	md := markdown.NewMarkdown(w.out)

	md.H1("Link Graph Report")
	md.PlainText("")

	md.H2("Link Graph")
	md.PlainText("")
	rows := make([][]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		rows = append(rows, []string{"`" + n.URL + "`", strconv.Itoa(n.Links)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Outbound links"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Triangles")
	md.PlainText("")
	if len(s.Triangles) == 0 {
		md.PlainText("No triangular link patterns found.")
		return md.Build()
	}

	triRows := make([][]string, 0, len(s.Triangles))
	for i, t := range s.Triangles {
		triRows = append(triRows, []string{strconv.Itoa(i + 1), "`" + t[0] + "`", "`" + t[1] + "`", "`" + t[2] + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "A", "B", "C"},
		Rows:   triRows,
	})

	return md.Build()
}
