// Package pdftest generates small PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Text places one string on a page in raw PDF coordinates
type Text struct {
	X, Y float64
	Size float64
	S    string
}

// Page is the content of one generated page
type Page struct {
	Texts []Text
	// Extra is appended verbatim to the content stream.
	Extra string
	// Forms maps XObject names to form content streams. Forms share the
	// page's XObject resources, so they can paint Im1 or each other.
	Forms map[string]string
}

func stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// Build assembles a minimal PDF with a Helvetica font of uniform 500 unit
// glyph widths and a 1x1 image XObject named Im1 on every page, plus the
// page's forms
func Build(pages []Page) []byte {
	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
			"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		stream("/Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8", "A"),
	}

	var kids []string
	for _, page := range pages {
		pageObj := len(objects) + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))

		var content strings.Builder
		for _, t := range page.Texts {
			fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n", t.Size, t.X, t.Y, t.S)
		}
		content.WriteString(page.Extra)

		names := make([]string, 0, len(page.Forms))
		for name := range page.Forms {
			names = append(names, name)
		}
		sort.Strings(names)
		xobjects := "/Im1 4 0 R"
		for i, name := range names {
			xobjects += fmt.Sprintf(" /%s %d 0 R", name, pageObj+2+i)
		}

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> "+
				"/XObject << %s >> >> /Contents %d 0 R >>", xobjects, pageObj+1),
			stream("", content.String()),
		)
		for _, name := range names {
			objects = append(objects, stream(
				"/Type /XObject /Subtype /Form /BBox [0 0 612 792] /Resources << /XObject << "+xobjects+" >> >>",
				page.Forms[name]))
		}
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// Write writes a generated PDF into a temporary directory
func Write(t testing.TB, pages []Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	require.NoError(t, os.WriteFile(path, Build(pages), 0o600))
	return path
}

// TablePage is a three row, two column price list
func TablePage() Page {
	return Page{Texts: []Text{
		{X: 72, Y: 700, Size: 10, S: "Item"},
		{X: 300, Y: 700, Size: 10, S: "Price"},
		{X: 72, Y: 670, Size: 10, S: "Apples"},
		{X: 300, Y: 670, Size: 10, S: "1.20"},
		{X: 72, Y: 640, Size: 10, S: "Pears"},
		{X: 300, Y: 640, Size: 10, S: "0.80"},
	}}
}

// DenseTablePage is a rows x 3 grid in 20 point text, dense enough to pass
// the layout gate's text-coverage rule
func DenseTablePage(rows int) Page {
	var page Page
	for r := 0; r < rows; r++ {
		for c := 0; c < 3; c++ {
			page.Texts = append(page.Texts, Text{
				X:    50 + float64(c)*170,
				Y:    740 - float64(r)*30,
				Size: 20,
				S:    DenseCell(r, c),
			})
		}
	}
	return page
}

// DenseCell is the text DenseTablePage places at row r, column c
func DenseCell(r, c int) string {
	return fmt.Sprintf("R%02d-C%d-data", r, c)
}
