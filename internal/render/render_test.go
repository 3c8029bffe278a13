package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

func sampleLayout() *layout.DocumentLayout {
	return &layout.DocumentLayout{
		Pages: []layout.PageLayout{
			{
				PageNumber: 1,
				Kind:       layout.LayoutKindTable,
				Grid: [][]string{
					{"Item", "Price"},
					{"Pipe | fitting", "1.20"},
					{"Pears", ""},
				},
			},
			{
				PageNumber:      2,
				Kind:            layout.LayoutKindParagraphs,
				Paragraphs:      []string{"First line", "# not a heading"},
				Degraded:        true,
				DegradedReason:  "no columns or rows detected",
				PageBreakBefore: true,
			},
		},
		Headers: []string{"Confidential"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"MD", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkdown(t *testing.T) {
	out, err := String(FormatMarkdown, sampleLayout())
	require.NoError(t, err)

	want := strings.Join([]string{
		"## Page 1",
		"",
		"| Item | Price |",
		"| --- | --- |",
		`| Pipe \| fitting | 1.20 |`,
		"| Pears |  |",
		"",
		"",
		"---",
		"",
		"## Page 2",
		"",
		"_No table detected: no columns or rows detected._",
		"",
		"First line",
		"",
		`\# not a heading`,
		"",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestMarkdown_Empty(t *testing.T) {
	out, err := String(FormatMarkdown, &layout.DocumentLayout{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestJSON(t *testing.T) {
	out, err := String(FormatJSON, sampleLayout())
	require.NoError(t, err)

	var decoded layout.DocumentLayout
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, *sampleLayout(), decoded)
	assert.Contains(t, out, `"page_break_before": true`)
}

func TestYAML(t *testing.T) {
	out, err := String(FormatYAML, sampleLayout())
	require.NoError(t, err)

	assert.Contains(t, out, "page_number: 1")
	assert.Contains(t, out, "kind: paragraphs")
	assert.Contains(t, out, "degraded_reason: no columns or rows detected")

	var decoded layout.DocumentLayout
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, sampleLayout().Pages[0].Grid, decoded.Pages[0].Grid)
	assert.Equal(t, []string{"Confidential"}, decoded.Headers)
}

func TestValue_RejectsMarkdown(t *testing.T) {
	var b strings.Builder
	assert.Error(t, Value(&b, FormatMarkdown, map[string]int{"a": 1}))
	require.NoError(t, Value(&b, FormatJSON, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a": 1}`, b.String())
}
