package layout

import (
	"fmt"
	"runtime"
)

// AxisDirection names the vertical coordinate convention of the fragments
type AxisDirection string

const (
	// AxisTopDown means vertical values grow toward the bottom of the page
	AxisTopDown AxisDirection = "top-down"
	// AxisBottomUp means vertical values grow toward the top of the page, as
	// in raw PDF user space
	AxisBottomUp AxisDirection = "bottom-up"
)

// ParseAxisDirection converts a configuration string into an AxisDirection
func ParseAxisDirection(s string) (AxisDirection, error) {
	switch AxisDirection(s) {
	case AxisTopDown, AxisBottomUp:
		return AxisDirection(s), nil
	case "":
		return AxisTopDown, nil
	default:
		return "", fmt.Errorf("unknown axis direction %q (must be %q or %q)", s, AxisTopDown, AxisBottomUp)
	}
}

// readingKey maps a vertical value to a key that increases in reading order
func (a AxisDirection) readingKey(v float64) float64 {
	if a == AxisBottomUp {
		return -v
	}
	return v
}

// Before reports whether vertical value a is read before vertical value b
func (a AxisDirection) Before(x, y float64) bool {
	return a.readingKey(x) < a.readingKey(y)
}

// GateConfig holds the VisualPageGate thresholds
type GateConfig struct {
	MaxImageRatio      float64 `json:"max_image_ratio" yaml:"max_image_ratio"`             // image_area/total_area above this rejects
	MinTextRatio       float64 `json:"min_text_ratio" yaml:"min_text_ratio"`               // text_area/total_area below this rejects
	MaxFiguresPerPage  int     `json:"max_figures_per_page" yaml:"max_figures_per_page"`   // figure_count above pages*this rejects
	FormMinFragments   int     `json:"form_min_fragments" yaml:"form_min_fragments"`       // bucket rule only applies above this many fragments
	FormBucketSize     float64 `json:"form_bucket_size" yaml:"form_bucket_size"`           // left coordinates are rounded to multiples of this
	FormMaxBucketRatio float64 `json:"form_max_bucket_ratio" yaml:"form_max_bucket_ratio"` // largest bucket share above this rejects
}

// DefaultGateConfig returns the default gate thresholds
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxImageRatio:      0.30,
		MinTextRatio:       0.10,
		MaxFiguresPerPage:  5,
		FormMinFragments:   100,
		FormBucketSize:     10.0,
		FormMaxBucketRatio: 0.30,
	}
}

// Config holds every engine threshold
type Config struct {
	ColumnTolerance         float64       `json:"column_tolerance" yaml:"column_tolerance"`
	FontSizeTolerance       float64       `json:"font_size_tolerance" yaml:"font_size_tolerance"`
	VerticalToleranceFactor float64       `json:"vertical_tolerance_factor" yaml:"vertical_tolerance_factor"`
	VerticalGapThreshold    float64       `json:"vertical_gap_threshold" yaml:"vertical_gap_threshold"`
	HeaderFooterBandRatio   float64       `json:"header_footer_band_ratio" yaml:"header_footer_band_ratio"`
	HeaderFooterMinPages    float64       `json:"header_footer_min_pages" yaml:"header_footer_min_pages"` // fraction of pages a text must appear on
	Axis                    AxisDirection `json:"axis" yaml:"axis"`
	Workers                 int           `json:"workers" yaml:"workers"`
	Gate                    GateConfig    `json:"gate" yaml:"gate"`
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		ColumnTolerance:         10.0,
		FontSizeTolerance:       2.0,
		VerticalToleranceFactor: 0.5,
		VerticalGapThreshold:    5.0,
		HeaderFooterBandRatio:   0.10,
		HeaderFooterMinPages:    0.50,
		Axis:                    AxisTopDown,
		Workers:                 runtime.GOMAXPROCS(0),
		Gate:                    DefaultGateConfig(),
	}
}

// Validate checks that the thresholds are usable
func (c Config) Validate() error {
	if c.ColumnTolerance <= 0 {
		return fmt.Errorf("column tolerance must be positive")
	}
	if c.FontSizeTolerance <= 0 {
		return fmt.Errorf("font size tolerance must be positive")
	}
	if c.VerticalToleranceFactor <= 0 {
		return fmt.Errorf("vertical tolerance factor must be positive")
	}
	if c.VerticalGapThreshold < 0 {
		return fmt.Errorf("vertical gap threshold must not be negative")
	}
	if c.HeaderFooterBandRatio <= 0 || c.HeaderFooterBandRatio > 1 {
		return fmt.Errorf("header/footer band ratio must be in (0, 1]")
	}
	if c.HeaderFooterMinPages <= 0 || c.HeaderFooterMinPages > 1 {
		return fmt.Errorf("header/footer page ratio must be in (0, 1]")
	}
	if _, err := ParseAxisDirection(string(c.Axis)); err != nil {
		return err
	}
	if c.Gate.MaxImageRatio <= 0 || c.Gate.MaxImageRatio > 1 {
		return fmt.Errorf("max image ratio must be in (0, 1]")
	}
	if c.Gate.MinTextRatio < 0 || c.Gate.MinTextRatio > 1 {
		return fmt.Errorf("min text ratio must be in [0, 1]")
	}
	if c.Gate.MaxFiguresPerPage < 0 {
		return fmt.Errorf("max figures per page must not be negative")
	}
	if c.Gate.FormBucketSize <= 0 {
		return fmt.Errorf("form bucket size must be positive")
	}
	if c.Gate.FormMaxBucketRatio <= 0 || c.Gate.FormMaxBucketRatio > 1 {
		return fmt.Errorf("form bucket ratio must be in (0, 1]")
	}
	return nil
}
