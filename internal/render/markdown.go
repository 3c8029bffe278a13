package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// Markdown writes each page as a section. Grids become pipe tables whose
// first row is the header row, paragraph pages become plain paragraphs, and
// pages are separated by a horizontal rule.
func Markdown(w io.Writer, doc *layout.DocumentLayout) error {
	bw := bufio.NewWriter(w)

	for _, page := range doc.Pages {
		if page.PageBreakBefore {
			bw.WriteString("\n---\n\n")
		}
		fmt.Fprintf(bw, "## Page %d\n\n", page.PageNumber)

		switch page.Kind {
		case layout.LayoutKindTable:
			writeTable(bw, page.Grid)
		default:
			if page.Degraded && page.DegradedReason != "" {
				fmt.Fprintf(bw, "_No table detected: %s._\n\n", page.DegradedReason)
			}
			for _, p := range page.Paragraphs {
				bw.WriteString(escapeText(p))
				bw.WriteString("\n\n")
			}
		}
	}

	return bw.Flush()
}

func writeTable(w *bufio.Writer, grid [][]string) {
	if len(grid) == 0 {
		return
	}
	cols := len(grid[0])

	writeRow(w, grid[0])
	w.WriteString("|")
	for i := 0; i < cols; i++ {
		w.WriteString(" --- |")
	}
	w.WriteString("\n")
	for _, row := range grid[1:] {
		writeRow(w, row)
	}
	w.WriteString("\n")
}

func writeRow(w *bufio.Writer, row []string) {
	w.WriteString("|")
	for _, cell := range row {
		w.WriteString(" ")
		w.WriteString(escapeCell(cell))
		w.WriteString(" |")
	}
	w.WriteString("\n")
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// escapeCell makes text safe inside a pipe table cell
func escapeCell(s string) string {
	return cellEscaper.Replace(strings.TrimSpace(s))
}

// escapeText keeps a paragraph from being read as a heading, rule or list
func escapeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '-', '*', '+', '>', '|':
		return `\` + s
	}
	return s
}
