package extraction

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
	"github.com/a3tai/mcp-pdf-layout/internal/pdf/pdftest"
)

func glyphs(x, y, size float64, s string) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for _, r := range s {
		out = append(out, pdf.Text{Font: "Helvetica", FontSize: size, X: x, Y: y, W: size / 2, S: string(r)})
		x += size / 2
	}
	return out
}

func texts(fragments []layout.TextFragment) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = f.Text
	}
	return out
}

func TestBuildFragments_JoinsWordsAndSplitsColumns(t *testing.T) {
	var in []pdf.Text
	in = append(in, glyphs(300, 700, 10, "Price")...)
	in = append(in, glyphs(72, 700, 10, "Unit cost")...)
	in = append(in, glyphs(72, 680, 10, "Apples")...)

	fragments := BuildFragments(in, 1, 792, DefaultConfig())
	require.Equal(t, []string{"Unit cost", "Price", "Apples"}, texts(fragments))

	first := fragments[0]
	assert.Equal(t, 1, first.PageNumber)
	assert.InDelta(t, 72.0, first.Left, 1e-9)
	assert.InDelta(t, 72.0+9*5, first.Right, 1e-9)
	assert.InDelta(t, 792.0-710, first.Top, 1e-9)
	assert.InDelta(t, 792.0-700, first.Bottom, 1e-9)
	assert.InDelta(t, 10.0, first.FontSize, 1e-9)
}

func TestBuildFragments_GapInsertsSpace(t *testing.T) {
	var in []pdf.Text
	in = append(in, glyphs(72, 700, 10, "Net")...)
	// 4 points after "Net" ends: wider than a word gap, narrower than a
	// fragment gap.
	in = append(in, glyphs(72+15+4, 700, 10, "total")...)

	fragments := BuildFragments(in, 1, 792, DefaultConfig())
	assert.Equal(t, []string{"Net total"}, texts(fragments))
}

func TestBuildFragments_BaselineTolerance(t *testing.T) {
	var in []pdf.Text
	in = append(in, glyphs(72, 700, 10, "abc")...)
	in = append(in, glyphs(90, 698, 10, "def")...)
	in = append(in, glyphs(72, 690, 10, "next")...)

	fragments := BuildFragments(in, 1, 792, DefaultConfig())
	assert.Equal(t, []string{"abc def", "next"}, texts(fragments))
}

func TestBuildFragments_BottomUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Axis = layout.AxisBottomUp

	fragments := BuildFragments(glyphs(72, 700, 10, "raw"), 3, 792, cfg)
	require.Len(t, fragments, 1)
	assert.InDelta(t, 710.0, fragments[0].Top, 1e-9)
	assert.InDelta(t, 700.0, fragments[0].Bottom, 1e-9)
	assert.Equal(t, 3, fragments[0].PageNumber)
}

func TestBuildFragments_DefaultFontSizeAndWhitespace(t *testing.T) {
	in := []pdf.Text{
		{X: 72, Y: 700, W: 6, S: "a"},
		{X: 78, Y: 700, W: 6, S: " "},
		{X: 84, Y: 700, W: 6, S: "b"},
		{X: 200, Y: 650, W: 6, S: "   "},
	}

	fragments := BuildFragments(in, 1, 792, DefaultConfig())
	require.Len(t, fragments, 1)
	assert.Equal(t, "a b", fragments[0].Text)
	assert.InDelta(t, 12.0, fragments[0].FontSize, 1e-9)
}

func TestBuildFragments_Empty(t *testing.T) {
	assert.Empty(t, BuildFragments(nil, 1, 792, DefaultConfig()))
}

func TestMatrix(t *testing.T) {
	scale := matrix{100, 0, 0, 50, 200, 300}
	assert.InDelta(t, 5000.0, scale.unitArea(), 1e-9)

	// Scaling by 2 after the placement doubles both sides.
	doubled := scale.multiply(matrix{2, 0, 0, 2, 0, 0})
	assert.InDelta(t, 20000.0, doubled.unitArea(), 1e-9)
	assert.InDelta(t, 400.0, doubled[4], 1e-9)
	assert.InDelta(t, 600.0, doubled[5], 1e-9)

	assert.Equal(t, scale, scale.multiply(identity))
	assert.Equal(t, scale, identity.multiply(scale))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Axis = "sideways"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DefaultFontSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FragmentGapRatio = 0.1
	assert.Error(t, cfg.Validate())
}

func TestExtract_TablePage(t *testing.T) {
	path := pdftest.Write(t, []pdftest.Page{pdftest.TablePage()})

	doc, err := NewExtractor(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, []string{"Item", "Price", "Apples", "1.20", "Pears", "0.80"}, texts(page.Fragments))

	item := page.Fragments[0]
	assert.InDelta(t, 72.0, item.Left, 1e-6)
	assert.InDelta(t, 92.0, item.Right, 1e-6)
	assert.InDelta(t, 82.0, item.Top, 1e-6)
	assert.InDelta(t, 92.0, item.Bottom, 1e-6)

	require.NoError(t, doc.MetricsErr)
	require.NotNil(t, doc.Metrics)
	require.Len(t, doc.Metrics.Pages, 1)
	m := doc.Metrics.Pages[0]
	assert.InDelta(t, 612.0*792.0, m.PageArea, 1e-6)
	assert.InDelta(t, textArea(page.Fragments), m.TextArea, 1e-9)
	assert.Zero(t, m.ImageArea)
	assert.Zero(t, m.FigureCount)
}

func TestExtract_MeasuresImagesAndBoxes(t *testing.T) {
	page := pdftest.TablePage()
	page.Extra = "q 100 0 0 50 200 300 cm /Im1 Do Q\n10 10 50 50 re f\n"
	path := pdftest.Write(t, []pdftest.Page{page})

	doc, err := NewExtractor(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, doc.MetricsErr)

	m := doc.Metrics.Pages[0]
	assert.InDelta(t, 5000.0, m.ImageArea, 1e-6)
	assert.Equal(t, 2, m.FigureCount, "one image and one rectangle")
}

func TestExtract_MeasuresNestedForms(t *testing.T) {
	const placeImage = "q 100 0 0 50 0 0 cm /Im1 Do Q"

	tests := []struct {
		name        string
		forms       map[string]string
		maxDepth    int
		wantArea    float64
		wantFigures int
	}{
		{
			name:        "image inside form",
			forms:       map[string]string{"Fm1": placeImage},
			maxDepth:    DefaultConfig().MaxFormDepth,
			wantArea:    5000,
			wantFigures: 1,
		},
		{
			name:        "image two forms deep",
			forms:       map[string]string{"Fm1": "/Fm2 Do", "Fm2": placeImage},
			maxDepth:    DefaultConfig().MaxFormDepth,
			wantArea:    5000,
			wantFigures: 1,
		},
		{
			name:        "depth limit stops before nested form",
			forms:       map[string]string{"Fm1": "/Fm2 Do", "Fm2": placeImage},
			maxDepth:    1,
			wantArea:    0,
			wantFigures: 1,
		},
		{
			name:        "forms not entered at depth zero",
			forms:       map[string]string{"Fm1": placeImage},
			maxDepth:    0,
			wantArea:    0,
			wantFigures: 1,
		},
		{
			name:        "self-referencing form terminates",
			forms:       map[string]string{"Fm1": "/Fm1 Do"},
			maxDepth:    DefaultConfig().MaxFormDepth,
			wantArea:    0,
			wantFigures: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := pdftest.TablePage()
			page.Extra = "q 1 0 0 1 200 300 cm /Fm1 Do Q\n"
			page.Forms = tt.forms
			path := pdftest.Write(t, []pdftest.Page{page})

			cfg := DefaultConfig()
			cfg.MaxFormDepth = tt.maxDepth
			doc, err := NewExtractorWithConfig(cfg, nil).Extract(context.Background(), path)
			require.NoError(t, err)
			require.NoError(t, doc.MetricsErr)

			m := doc.Metrics.Pages[0]
			assert.InDelta(t, tt.wantArea, m.ImageArea, 1e-6)
			assert.Equal(t, tt.wantFigures, m.FigureCount, "only the page-level form counts")
		})
	}
}

func TestMeasurePage_ShortMatrixIgnoresEarlierOperands(t *testing.T) {
	page := pdftest.TablePage()
	// k leaves four numbers behind; the two-operand cm must not borrow them.
	page.Extra = "4 0 0 5 k 10 20 cm /Im1 Do\n"
	path := pdftest.Write(t, []pdftest.Page{page})

	f, reader, err := openPDF(path)
	require.NoError(t, err)
	defer f.Close()

	m, err := measurePage(reader.Page(1), DefaultConfig().MaxFormDepth)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.imageArea, 1e-9, "image drawn at the identity transform")
	assert.Equal(t, 1, m.figures)
}

func TestExtract_SkipMeasurements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipMeasurements = true
	path := pdftest.Write(t, []pdftest.Page{pdftest.TablePage()})

	doc, err := NewExtractorWithConfig(cfg, nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, doc.Metrics)
	assert.Error(t, doc.MetricsErr)
	assert.Equal(t, 6, doc.FragmentCount())
}

func TestExtract_MultiplePages(t *testing.T) {
	path := pdftest.Write(t, []pdftest.Page{pdftest.TablePage(), {}, pdftest.TablePage()})

	extractor := NewExtractor(nil)
	doc, err := extractor.Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)
	for i, p := range doc.Pages {
		assert.Equal(t, i+1, p.Number)
	}
	assert.Empty(t, doc.Pages[1].Fragments)

	count, err := extractor.PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestExtract_Errors(t *testing.T) {
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("This is not a PDF"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.pdf")},
		{"not a PDF", notPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewExtractor(nil).Extract(context.Background(), tt.path)
			assert.Nil(t, doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, layout.ErrExtractionFailed)

			var extractionErr *layout.ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, "open", extractionErr.Op)
			assert.Equal(t, tt.path, extractionErr.Path)
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	path := pdftest.Write(t, []pdftest.Page{pdftest.TablePage()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(nil).Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
