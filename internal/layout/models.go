package layout

import (
	"math"
	"strings"
)

// TextFragment is one extracted line of text on one page
type TextFragment struct {
	Text       string  `json:"text" yaml:"text"`
	Left       float64 `json:"left" yaml:"left"`
	Top        float64 `json:"top" yaml:"top"`
	Right      float64 `json:"right" yaml:"right"`
	Bottom     float64 `json:"bottom" yaml:"bottom"`
	FontSize   float64 `json:"font_size" yaml:"font_size"`
	PageNumber int     `json:"page_number" yaml:"page_number"`
}

// Center returns the vertical center of the fragment
func (f TextFragment) Center() float64 {
	return (f.Top + f.Bottom) / 2
}

// Width returns the horizontal extent of the fragment
func (f TextFragment) Width() float64 {
	return math.Abs(f.Right - f.Left)
}

// Height returns the vertical extent of the fragment
func (f TextFragment) Height() float64 {
	return math.Abs(f.Bottom - f.Top)
}

// Area returns the area covered by the fragment's bounding box
func (f TextFragment) Area() float64 {
	return f.Width() * f.Height()
}

// TrimmedText returns the fragment text without surrounding whitespace
func (f TextFragment) TrimmedText() string {
	return strings.TrimSpace(f.Text)
}

// Column is a detected vertical band on one page
type Column struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Index int     `json:"index"`
}

// Row is a finalized group of fragments sharing one visual row
type Row struct {
	Index     int
	Fragments []TextFragment
}

// Cell is a fragment, or merged fragments, addressed by row and column
type Cell struct {
	Text     string  `json:"text" yaml:"text"`
	RowIndex int     `json:"row_index" yaml:"row_index"`
	ColIndex int     `json:"col_index" yaml:"col_index"`
	Left     float64 `json:"left" yaml:"left"`
	Right    float64 `json:"right" yaml:"right"`
	Top      float64 `json:"top" yaml:"top"`
	Bottom   float64 `json:"bottom" yaml:"bottom"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
}

// LayoutKind tells which structure a page was reconstructed into
type LayoutKind string

const (
	LayoutKindTable      LayoutKind = "table"
	LayoutKindParagraphs LayoutKind = "paragraphs"
)

// PageLayout is the reconstructed structure of one page. Exactly one of Grid
// or Paragraphs is populated, depending on Kind.
type PageLayout struct {
	PageNumber      int        `json:"page_number" yaml:"page_number"`
	Kind            LayoutKind `json:"kind" yaml:"kind"`
	Grid            [][]string `json:"grid,omitempty" yaml:"grid,omitempty"`
	Cells           []Cell     `json:"cells,omitempty" yaml:"cells,omitempty"`
	Paragraphs      []string   `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	Degraded        bool       `json:"degraded" yaml:"degraded"`
	DegradedReason  string     `json:"degraded_reason,omitempty" yaml:"degraded_reason,omitempty"`
	PageBreakBefore bool       `json:"page_break_before" yaml:"page_break_before"`
}

// Rows returns the number of grid rows
func (p PageLayout) Rows() int {
	return len(p.Grid)
}

// Cols returns the number of grid columns
func (p PageLayout) Cols() int {
	if len(p.Grid) == 0 {
		return 0
	}
	return len(p.Grid[0])
}

// DocumentLayout is the engine's final output, one PageLayout per page in
// page order
type DocumentLayout struct {
	Pages   []PageLayout `json:"pages" yaml:"pages"`
	Headers []string     `json:"headers,omitempty" yaml:"headers,omitempty"`
	Footers []string     `json:"footers,omitempty" yaml:"footers,omitempty"`
}

// TableCount returns the number of pages reconstructed as tables
func (d DocumentLayout) TableCount() int {
	n := 0
	for _, p := range d.Pages {
		if p.Kind == LayoutKindTable {
			n++
		}
	}
	return n
}

// Page holds the fragments extracted from one page
type Page struct {
	Number    int            `json:"number"`
	Fragments []TextFragment `json:"fragments"`
}

// PageMetrics holds the aggregate area measurements for one page
type PageMetrics struct {
	PageNumber  int     `json:"page_number"`
	PageArea    float64 `json:"page_area"`
	TextArea    float64 `json:"text_area"`
	ImageArea   float64 `json:"image_area"`
	FigureCount int     `json:"figure_count"`
}

// DocumentMetrics holds per-page measurements from the extraction pass
type DocumentMetrics struct {
	Pages []PageMetrics `json:"pages"`
}

// Totals sums the measurements over all pages
func (m DocumentMetrics) Totals() PageMetrics {
	var total PageMetrics
	for _, p := range m.Pages {
		total.PageArea += p.PageArea
		total.TextArea += p.TextArea
		total.ImageArea += p.ImageArea
		total.FigureCount += p.FigureCount
	}
	return total
}

// Document is the input to the engine: fragments by page plus the aggregate
// measurements. MetricsErr records a failed measurement pass; the gate then
// fails open.
type Document struct {
	Pages      []Page
	Metrics    *DocumentMetrics
	MetricsErr error
}

// FragmentCount returns the total number of fragments across all pages
func (d Document) FragmentCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Fragments)
	}
	return n
}

// AllFragments returns every fragment in page order
func (d Document) AllFragments() []TextFragment {
	all := make([]TextFragment, 0, d.FragmentCount())
	for _, p := range d.Pages {
		all = append(all, p.Fragments...)
	}
	return all
}
