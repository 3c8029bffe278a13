// Package render encodes reconstructed layouts as Markdown, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// Format names an output encoding
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats
var Formats = []Format{FormatMarkdown, FormatJSON, FormatYAML}

// ParseFormat accepts a format name, case-insensitively, plus the aliases
// "md" and "yml". The empty string selects Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be markdown, json or yaml)", s)
	}
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// YAML writes v as a YAML document
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// Value writes v in a machine format. Markdown is only defined for
// layouts, so it is rejected here.
func Value(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		return JSON(w, v)
	case FormatYAML:
		return YAML(w, v)
	default:
		return fmt.Errorf("format %q is not supported for this result", format)
	}
}

// Layout writes doc in the given format
func Layout(w io.Writer, format Format, doc *layout.DocumentLayout) error {
	if format == FormatMarkdown {
		return Markdown(w, doc)
	}
	return Value(w, format, doc)
}

// String renders doc into a string
func String(format Format, doc *layout.DocumentLayout) (string, error) {
	var b strings.Builder
	if err := Layout(&b, format, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}
