// Package layout reconstructs tables and paragraphs from positioned text
// fragments without OCR or learned models.
//
// A document first passes the Gate, which refuses pages that look like
// visual designs. Text repeated in the header or footer band of most pages is
// then removed, and each page is reconstructed independently: columns are
// clustered from left edges, rows from vertical position and font size,
// fragments are assigned to cells and vertically wrapped cells merged. Pages
// that yield no cells fall back to a paragraph list.
package layout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/iter"
)

// Engine runs the reconstruction pipeline. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	config Config
	gate   *Gate
	logger *slog.Logger
	// buildPage turns the surviving fragments of one page into its layout.
	buildPage func(pageNumber int, fragments []TextFragment) PageLayout
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine's logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with the given thresholds
func NewEngine(config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	e := &Engine{
		config: config,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gate = NewGateWithConfig(config.Gate, e.logger)
	e.buildPage = e.buildTable
	return e, nil
}

// Config returns the engine's thresholds
func (e *Engine) Config() Config {
	return e.config
}

// Assess runs only the gate
func (e *Engine) Assess(doc Document) Assessment {
	return e.gate.Assess(doc)
}

// Reconstruct converts a document into its layout. A gate rejection returns
// a *RejectionError and no layout. Individual pages never fail: a page that
// cannot be built as a table is returned as degraded paragraphs.
func (e *Engine) Reconstruct(ctx context.Context, doc Document) (*DocumentLayout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assessment := e.gate.Assess(doc)
	if assessment.Rejected {
		e.logger.Info("document rejected by layout gate",
			"reason", assessment.Reason,
			"fragments", assessment.FragmentCount,
			"pages", assessment.PageCount)
		return nil, assessment.Err()
	}

	headers, footers := DetectHeadersFooters(doc.Pages,
		e.config.HeaderFooterBandRatio, e.config.HeaderFooterMinPages, e.config.Axis)
	if len(headers)+len(footers) > 0 {
		e.logger.Debug("suppressing repeated page text",
			"headers", len(headers), "footers", len(footers))
	}

	mapper := iter.Mapper[Page, PageLayout]{MaxGoroutines: e.config.Workers}
	pages := mapper.Map(doc.Pages, func(p *Page) PageLayout {
		return e.reconstructPage(*p, headers, footers)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range pages {
		pages[i].PageBreakBefore = i > 0
	}

	result := &DocumentLayout{
		Pages:   pages,
		Headers: headers.Sorted(),
		Footers: footers.Sorted(),
	}
	e.logger.Debug("document reconstructed",
		"pages", len(pages), "tables", result.TableCount())
	return result, nil
}

// reconstructPage builds one page. A panic anywhere in the page pipeline is
// turned into a paragraph fallback over the fragments that survived
// header/footer removal.
func (e *Engine) reconstructPage(page Page, headers, footers TextSet) (result PageLayout) {
	fragments := page.Fragments
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("page reconstruction failed, falling back to paragraphs",
				"page", page.Number, "panic", r)
			result = e.paragraphs(page.Number, fragments, fmt.Sprintf("internal error: %v", r))
		}
	}()

	fragments = RemoveRepeated(page.Fragments, headers, footers)
	if len(fragments) == 0 {
		return e.paragraphs(page.Number, fragments, "no fragments")
	}
	return e.buildPage(page.Number, fragments)
}

// buildTable clusters columns and rows, assigns and merges cells and lays
// them out as a grid
func (e *Engine) buildTable(pageNumber int, fragments []TextFragment) PageLayout {
	columns := DetectColumns(fragments, e.config.ColumnTolerance)
	rows := DetectRows(fragments, e.config.FontSizeTolerance, e.config.VerticalToleranceFactor, e.config.Axis)
	if len(columns) == 0 || len(rows) == 0 {
		return e.paragraphs(pageNumber, fragments, "no columns or rows detected")
	}

	cells := MergeCells(AssignCells(rows, columns), e.config.VerticalGapThreshold)
	if len(cells) == 0 {
		return e.paragraphs(pageNumber, fragments, "no cells after merge")
	}

	return PageLayout{
		PageNumber: pageNumber,
		Kind:       LayoutKindTable,
		Grid:       BuildGrid(cells),
		Cells:      cells,
	}
}

// paragraphs renders each fragment as one paragraph in row-sort order
func (e *Engine) paragraphs(pageNumber int, fragments []TextFragment, reason string) PageLayout {
	sorted := SortReadingOrder(fragments, e.config.Axis)
	paragraphs := make([]string, 0, len(sorted))
	for _, f := range sorted {
		paragraphs = append(paragraphs, f.Text)
	}
	return PageLayout{
		PageNumber:     pageNumber,
		Kind:           LayoutKindParagraphs,
		Paragraphs:     paragraphs,
		Degraded:       true,
		DegradedReason: reason,
	}
}

// BuildGrid places cells into a rectangular grid sized by the largest row and
// column index. Empty positions are "". Two cells at the same position are
// joined with a space.
func BuildGrid(cells []Cell) [][]string {
	if len(cells) == 0 {
		return nil
	}

	maxRow, maxCol := 0, 0
	for _, c := range cells {
		maxRow = max(maxRow, c.RowIndex)
		maxCol = max(maxCol, c.ColIndex)
	}

	grid := make([][]string, maxRow+1)
	for i := range grid {
		grid[i] = make([]string, maxCol+1)
	}

	for _, c := range cells {
		// Always true given how maxRow/maxCol are derived; kept as a guard.
		if c.RowIndex < 0 || c.RowIndex > maxRow || c.ColIndex < 0 || c.ColIndex > maxCol {
			continue
		}
		if existing := grid[c.RowIndex][c.ColIndex]; existing != "" {
			grid[c.RowIndex][c.ColIndex] = strings.Join([]string{existing, c.Text}, " ")
			continue
		}
		grid[c.RowIndex][c.ColIndex] = c.Text
	}
	return grid
}
