package layout

import (
	"log/slog"
	"math"
)

// Assessment is the verdict of the VisualPageGate
type Assessment struct {
	Rejected bool   `json:"rejected" yaml:"rejected"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Measurements the verdict was based on
	FragmentCount         int     `json:"fragment_count" yaml:"fragment_count"`
	PageCount             int     `json:"page_count" yaml:"page_count"`
	ImageRatio            float64 `json:"image_ratio" yaml:"image_ratio"`
	TextRatio             float64 `json:"text_ratio" yaml:"text_ratio"`
	FigureCount           int     `json:"figure_count" yaml:"figure_count"`
	LargestBucketRatio    float64 `json:"largest_bucket_ratio,omitempty" yaml:"largest_bucket_ratio,omitempty"`
	MeasurementsAvailable bool    `json:"measurements_available" yaml:"measurements_available"`
}

// Gate decides whether a document is suitable for heuristic reconstruction
type Gate struct {
	config GateConfig
	logger *slog.Logger
}

// NewGate creates a gate with default thresholds
func NewGate(logger *slog.Logger) *Gate {
	return NewGateWithConfig(DefaultGateConfig(), logger)
}

// NewGateWithConfig creates a gate with custom thresholds
func NewGateWithConfig(config GateConfig, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{config: config, logger: logger}
}

// Assess runs the rejection rules over the whole document. The first rule
// that matches wins.
func (g *Gate) Assess(doc Document) Assessment {
	a := Assessment{
		FragmentCount: doc.FragmentCount(),
		PageCount:     len(doc.Pages),
	}

	if a.FragmentCount == 0 {
		return a.reject(ReasonNoText)
	}

	if doc.MetricsErr != nil || doc.Metrics == nil {
		// Fail open: a broken measurement pass must not block the document.
		g.logger.Warn("layout measurements unavailable, accepting document",
			"error", doc.MetricsErr)
		return a
	}
	a.MeasurementsAvailable = true

	totals := doc.Metrics.Totals()
	a.FigureCount = totals.FigureCount
	if totals.PageArea > 0 {
		a.ImageRatio = totals.ImageArea / totals.PageArea
		a.TextRatio = totals.TextArea / totals.PageArea

		if a.ImageRatio > g.config.MaxImageRatio {
			return a.reject(ReasonImageDensity)
		}
		if a.TextRatio < g.config.MinTextRatio {
			return a.reject(ReasonLowText)
		}
	}

	pages := len(doc.Metrics.Pages)
	if pages == 0 {
		pages = len(doc.Pages)
	}
	if totals.FigureCount > pages*g.config.MaxFiguresPerPage {
		return a.reject(ReasonFigureCount)
	}

	if a.FragmentCount > g.config.FormMinFragments {
		a.LargestBucketRatio = g.largestBucketRatio(doc)
		if a.LargestBucketRatio > g.config.FormMaxBucketRatio {
			return a.reject(ReasonFormLikeLayout)
		}
	}

	return a
}

// largestBucketRatio returns the share of fragments whose left coordinate
// rounds to the most common bucket
func (g *Gate) largestBucketRatio(doc Document) float64 {
	buckets := make(map[float64]int)
	largest := 0
	total := 0
	for _, page := range doc.Pages {
		for _, f := range page.Fragments {
			key := math.Round(f.Left/g.config.FormBucketSize) * g.config.FormBucketSize
			buckets[key]++
			if buckets[key] > largest {
				largest = buckets[key]
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(largest) / float64(total)
}

func (a Assessment) reject(reason string) Assessment {
	a.Rejected = true
	a.Reason = reason
	return a
}

// Err returns a *RejectionError for a rejected assessment, nil otherwise
func (a Assessment) Err() error {
	if !a.Rejected {
		return nil
	}
	return &RejectionError{Reason: a.Reason}
}
