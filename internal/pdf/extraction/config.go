package extraction

import (
	"fmt"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// Config controls how glyphs are grouped into fragments and which
// measurements are taken
type Config struct {
	// Axis selects the coordinate convention of the emitted fragments.
	Axis layout.AxisDirection `json:"axis"`

	// DefaultFontSize substitutes for glyphs without a usable font size.
	DefaultFontSize float64 `json:"default_font_size"`

	// LineTolerance is the baseline distance, as a fraction of the font
	// size, within which glyphs share a line.
	LineTolerance float64 `json:"line_tolerance"`

	// WordGapRatio is the horizontal gap, as a fraction of the font size,
	// above which a space is inserted between glyphs.
	WordGapRatio float64 `json:"word_gap_ratio"`

	// FragmentGapRatio is the horizontal gap above which a new fragment
	// starts on the same line.
	FragmentGapRatio float64 `json:"fragment_gap_ratio"`

	// SkipMeasurements disables page area and image measurements. The
	// layout gate then fails open.
	SkipMeasurements bool `json:"skip_measurements"`

	// MaxFormDepth bounds recursion into nested form XObjects.
	MaxFormDepth int `json:"max_form_depth"`
}

// DefaultConfig returns the extractor defaults
func DefaultConfig() Config {
	return Config{
		Axis:             layout.AxisTopDown,
		DefaultFontSize:  12,
		LineTolerance:    0.3,
		WordGapRatio:     0.15,
		FragmentGapRatio: 1.5,
		MaxFormDepth:     8,
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if _, err := layout.ParseAxisDirection(string(c.Axis)); err != nil {
		return err
	}
	if c.DefaultFontSize <= 0 {
		return fmt.Errorf("default font size must be positive, got %v", c.DefaultFontSize)
	}
	if c.LineTolerance < 0 {
		return fmt.Errorf("line tolerance cannot be negative, got %v", c.LineTolerance)
	}
	if c.WordGapRatio < 0 || c.FragmentGapRatio < c.WordGapRatio {
		return fmt.Errorf("fragment gap ratio (%v) must be at least the word gap ratio (%v)", c.FragmentGapRatio, c.WordGapRatio)
	}
	if c.MaxFormDepth < 0 {
		return fmt.Errorf("max form depth cannot be negative")
	}
	return nil
}
