// Package extraction produces positioned text fragments and page
// measurements from PDF files for the layout engine.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// Extractor reads a PDF into a layout.Document
type Extractor struct {
	config Config
	logger *slog.Logger
}

// NewExtractor creates an extractor with the default configuration
func NewExtractor(logger *slog.Logger) *Extractor {
	return NewExtractorWithConfig(DefaultConfig(), logger)
}

// NewExtractorWithConfig creates an extractor with a custom configuration
func NewExtractorWithConfig(config Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{config: config, logger: logger}
}

// Config returns the extractor configuration
func (e *Extractor) Config() Config {
	return e.config
}

// Extract opens path and returns its pages as positioned fragments together
// with page measurements. Failing to open the file or to read text is an
// *layout.ExtractionError. Failing to measure is recorded in
// Document.MetricsErr and does not fail the extraction.
func (e *Extractor) Extract(ctx context.Context, path string) (*layout.Document, error) {
	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}

	f, reader, err := openPDF(path)
	if err != nil {
		return nil, &layout.ExtractionError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	numPages := reader.NumPage()
	doc := &layout.Document{Pages: make([]layout.Page, 0, numPages)}
	boxes := make([]pageBox, 0, numPages)
	measures := make([]pageMeasure, 0, numPages)
	var measureErrs []error

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, layout.Page{Number: pageNum})
			boxes = append(boxes, pageBox{})
			measures = append(measures, pageMeasure{})
			continue
		}

		box, _ := mediaBox(page)
		glyphs, err := pageGlyphs(page)
		if err != nil {
			return nil, &layout.ExtractionError{
				Op:   "read_text",
				Path: path,
				Err:  fmt.Errorf("page %d: %w", pageNum, err),
			}
		}

		fragments := BuildFragments(glyphs, pageNum, box.Height, e.config)
		doc.Pages = append(doc.Pages, layout.Page{Number: pageNum, Fragments: fragments})
		boxes = append(boxes, box)

		if e.config.SkipMeasurements {
			continue
		}
		m, err := measurePage(page, e.config.MaxFormDepth)
		if err != nil {
			measureErrs = append(measureErrs, fmt.Errorf("page %d: %w", pageNum, err))
		}
		measures = append(measures, m)
	}

	e.logger.Debug("extracted positioned text",
		"path", path,
		"pages", numPages,
		"fragments", doc.FragmentCount())

	if e.config.SkipMeasurements {
		doc.MetricsErr = errors.New("measurements disabled")
		return doc, nil
	}

	dims, err := pageDimensions(path)
	switch {
	case err != nil:
		measureErrs = append(measureErrs, err)
	case len(dims) != numPages:
		measureErrs = append(measureErrs, fmt.Errorf("page count mismatch: %d dimensions for %d pages", len(dims), numPages))
	default:
		boxes = dims
	}

	if len(measureErrs) > 0 {
		doc.MetricsErr = errors.Join(measureErrs...)
		e.logger.Warn("page measurements unavailable", "path", path, "error", doc.MetricsErr)
		return doc, nil
	}

	metrics := &layout.DocumentMetrics{Pages: make([]layout.PageMetrics, numPages)}
	for i, page := range doc.Pages {
		metrics.Pages[i] = layout.PageMetrics{
			PageNumber:  page.Number,
			PageArea:    boxes[i].area(),
			TextArea:    textArea(page.Fragments),
			ImageArea:   measures[i].imageArea,
			FigureCount: measures[i].figures,
		}
	}
	doc.Metrics = metrics
	return doc, nil
}

// PageCount returns the number of pages in the file
func (e *Extractor) PageCount(path string) (int, error) {
	f, reader, err := openPDF(path)
	if err != nil {
		return 0, &layout.ExtractionError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// openPDF opens path with the positioned-text reader. The reader panics on
// some malformed trailers, which is reported as an error.
func openPDF(path string) (f io.Closer, reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, reader, err = nil, nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, nil, err
	}
	return file, reader, nil
}

// pageGlyphs returns the page's glyphs, converting reader panics on
// malformed content streams into errors
func pageGlyphs(page pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()
	return page.Content().Text, nil
}
