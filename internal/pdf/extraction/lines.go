package extraction

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// line is a run of glyphs sharing one baseline
type line struct {
	baseline float64
	glyphs   []pdf.Text
}

// fragmentBuilder accumulates glyphs of one fragment
type fragmentBuilder struct {
	text     strings.Builder
	left     float64
	right    float64
	baseline float64
	fontSize float64
	space    bool
}

// BuildFragments groups the glyphs of one page into line fragments. Glyphs
// on one baseline are joined left to right; a space is inserted for gaps
// wider than WordGapRatio of the font size and a new fragment is started for
// gaps wider than FragmentGapRatio. Coordinates are emitted in the configured
// axis convention.
func BuildFragments(glyphs []pdf.Text, pageNumber int, pageHeight float64, config Config) []layout.TextFragment {
	var fragments []layout.TextFragment
	for _, ln := range groupLines(glyphs, config) {
		var current *fragmentBuilder
		prevRight := math.Inf(-1)

		flush := func() {
			if current == nil {
				return
			}
			text := strings.TrimSpace(current.text.String())
			if text != "" {
				fragments = append(fragments, current.fragment(text, pageNumber, pageHeight, config.Axis))
			}
			current = nil
		}

		for _, g := range ln.glyphs {
			size := fontSize(g, config)
			if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
				if current != nil {
					current.space = true
				}
				continue
			}

			gap := g.X - prevRight
			if current != nil && gap > config.FragmentGapRatio*size {
				flush()
			}

			if current == nil {
				current = &fragmentBuilder{left: g.X, baseline: ln.baseline}
			} else if current.space || gap > config.WordGapRatio*size {
				current.text.WriteByte(' ')
			}
			current.space = false
			current.text.WriteString(g.S)
			current.right = math.Max(current.right, g.X+g.W)
			current.fontSize = math.Max(current.fontSize, size)
			prevRight = math.Max(prevRight, g.X+g.W)
		}
		flush()
	}
	return fragments
}

// groupLines sorts glyphs top to bottom and splits them into baselines.
// Glyphs within LineTolerance of the line's first baseline join it.
func groupLines(glyphs []pdf.Text, config Config) []line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines []line
	for _, g := range sorted {
		n := len(lines)
		if n > 0 && math.Abs(lines[n-1].baseline-g.Y) <= config.LineTolerance*fontSize(g, config) {
			lines[n-1].glyphs = append(lines[n-1].glyphs, g)
			continue
		}
		lines = append(lines, line{baseline: g.Y, glyphs: []pdf.Text{g}})
	}

	for i := range lines {
		glyphs := lines[i].glyphs
		sort.SliceStable(glyphs, func(a, b int) bool {
			return glyphs[a].X < glyphs[b].X
		})
	}
	return lines
}

func (b *fragmentBuilder) fragment(text string, pageNumber int, pageHeight float64, axis layout.AxisDirection) layout.TextFragment {
	top := b.baseline + b.fontSize
	bottom := b.baseline
	if axis == layout.AxisTopDown {
		top, bottom = pageHeight-top, pageHeight-bottom
	}
	return layout.TextFragment{
		Text:       text,
		Left:       b.left,
		Right:      b.right,
		Top:        top,
		Bottom:     bottom,
		FontSize:   b.fontSize,
		PageNumber: pageNumber,
	}
}

// fontSize returns the glyph's font size, or the configured default when the
// content stream did not yield one
func fontSize(g pdf.Text, config Config) float64 {
	if g.FontSize > 0 {
		return g.FontSize
	}
	return config.DefaultFontSize
}
