package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// envKeyReplacer turns flag names into environment variable suffixes, so
// column-tolerance is read from MCP_PDF_COLUMN_TOLERANCE
var envKeyReplacer = strings.NewReplacer("-", "_")

// Layout flag names. They double as viper keys and config file keys.
const (
	FlagColumnTolerance         = "column-tolerance"
	FlagFontSizeTolerance       = "font-size-tolerance"
	FlagVerticalToleranceFactor = "vertical-tolerance-factor"
	FlagVerticalGapThreshold    = "vertical-gap-threshold"
	FlagHeaderBandRatio         = "header-band-ratio"
	FlagHeaderMinPageRatio      = "header-min-page-ratio"
	FlagAxis                    = "axis"
	FlagWorkers                 = "workers"
	FlagMaxImageRatio           = "max-image-ratio"
	FlagMinTextRatio            = "min-text-ratio"
	FlagMaxFiguresPerPage       = "max-figures-per-page"
	FlagFormMinFragments        = "form-min-fragments"
	FlagFormBucketSize          = "form-bucket-size"
	FlagFormMaxBucketRatio      = "form-max-bucket-ratio"
)

var layoutFlagNames = []string{
	FlagColumnTolerance,
	FlagFontSizeTolerance,
	FlagVerticalToleranceFactor,
	FlagVerticalGapThreshold,
	FlagHeaderBandRatio,
	FlagHeaderMinPageRatio,
	FlagAxis,
	FlagWorkers,
	FlagMaxImageRatio,
	FlagMinTextRatio,
	FlagMaxFiguresPerPage,
	FlagFormMinFragments,
	FlagFormBucketSize,
	FlagFormMaxBucketRatio,
}

// AddLayoutFlags registers one flag per layout threshold on fs
func AddLayoutFlags(fs *pflag.FlagSet, def layout.Config) {
	fs.Float64(FlagColumnTolerance, def.ColumnTolerance,
		"Maximum left-edge distance, in points, between fragments of one column")
	fs.Float64(FlagFontSizeTolerance, def.FontSizeTolerance,
		"Maximum font size difference between fragments of one row")
	fs.Float64(FlagVerticalToleranceFactor, def.VerticalToleranceFactor,
		"Row tolerance as a multiple of the average font size of fragment and row")
	fs.Float64(FlagVerticalGapThreshold, def.VerticalGapThreshold,
		"Maximum gap, in points, between wrapped lines of one cell")
	fs.Float64(FlagHeaderBandRatio, def.HeaderFooterBandRatio,
		"Fraction of the page height treated as header or footer band")
	fs.Float64(FlagHeaderMinPageRatio, def.HeaderFooterMinPages,
		"Fraction of pages a banded text must repeat on to be removed")
	fs.String(FlagAxis, string(def.Axis), "Vertical coordinate convention: top-down or bottom-up")
	fs.Int(FlagWorkers, def.Workers, "Pages reconstructed in parallel")
	fs.Float64(FlagMaxImageRatio, def.Gate.MaxImageRatio,
		"Reject documents whose images cover more than this share of the page area")
	fs.Float64(FlagMinTextRatio, def.Gate.MinTextRatio,
		"Reject documents whose text covers less than this share of the page area")
	fs.Int(FlagMaxFiguresPerPage, def.Gate.MaxFiguresPerPage, "Reject documents with more figures than this per page")
	fs.Int(FlagFormMinFragments, def.Gate.FormMinFragments, "Fragments needed before the form rule applies")
	fs.Float64(FlagFormBucketSize, def.Gate.FormBucketSize,
		"Bucket width, in points, for left-edge clustering in the form rule")
	fs.Float64(FlagFormMaxBucketRatio, def.Gate.FormMaxBucketRatio,
		"Reject documents whose largest left-edge bucket holds more than this share")
}

// BindLayoutFlags binds the flags registered by AddLayoutFlags to v
func BindLayoutFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, name := range layoutFlagNames {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag %s is not defined", name)
		}
		if err := v.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

// SetLayoutDefaults registers def as the fallback for every layout key
func SetLayoutDefaults(v *viper.Viper, def layout.Config) {
	v.SetDefault(FlagColumnTolerance, def.ColumnTolerance)
	v.SetDefault(FlagFontSizeTolerance, def.FontSizeTolerance)
	v.SetDefault(FlagVerticalToleranceFactor, def.VerticalToleranceFactor)
	v.SetDefault(FlagVerticalGapThreshold, def.VerticalGapThreshold)
	v.SetDefault(FlagHeaderBandRatio, def.HeaderFooterBandRatio)
	v.SetDefault(FlagHeaderMinPageRatio, def.HeaderFooterMinPages)
	v.SetDefault(FlagAxis, string(def.Axis))
	v.SetDefault(FlagWorkers, def.Workers)
	v.SetDefault(FlagMaxImageRatio, def.Gate.MaxImageRatio)
	v.SetDefault(FlagMinTextRatio, def.Gate.MinTextRatio)
	v.SetDefault(FlagMaxFiguresPerPage, def.Gate.MaxFiguresPerPage)
	v.SetDefault(FlagFormMinFragments, def.Gate.FormMinFragments)
	v.SetDefault(FlagFormBucketSize, def.Gate.FormBucketSize)
	v.SetDefault(FlagFormMaxBucketRatio, def.Gate.FormMaxBucketRatio)
}

// LayoutFromViper reads the layout thresholds from v and validates them
func LayoutFromViper(v *viper.Viper) (layout.Config, error) {
	axis, err := layout.ParseAxisDirection(v.GetString(FlagAxis))
	if err != nil {
		return layout.Config{}, err
	}

	lc := layout.Config{
		ColumnTolerance:         v.GetFloat64(FlagColumnTolerance),
		FontSizeTolerance:       v.GetFloat64(FlagFontSizeTolerance),
		VerticalToleranceFactor: v.GetFloat64(FlagVerticalToleranceFactor),
		VerticalGapThreshold:    v.GetFloat64(FlagVerticalGapThreshold),
		HeaderFooterBandRatio:   v.GetFloat64(FlagHeaderBandRatio),
		HeaderFooterMinPages:    v.GetFloat64(FlagHeaderMinPageRatio),
		Axis:                    axis,
		Workers:                 v.GetInt(FlagWorkers),
		Gate: layout.GateConfig{
			MaxImageRatio:      v.GetFloat64(FlagMaxImageRatio),
			MinTextRatio:       v.GetFloat64(FlagMinTextRatio),
			MaxFiguresPerPage:  v.GetInt(FlagMaxFiguresPerPage),
			FormMinFragments:   v.GetInt(FlagFormMinFragments),
			FormBucketSize:     v.GetFloat64(FlagFormBucketSize),
			FormMaxBucketRatio: v.GetFloat64(FlagFormMaxBucketRatio),
		},
	}
	if lc.Workers < 1 {
		lc.Workers = 1
	}
	if err := lc.Validate(); err != nil {
		return layout.Config{}, err
	}
	return lc, nil
}

// ConfigureEnv applies the environment prefix and key replacer to v
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}
