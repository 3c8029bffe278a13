package extraction

import (
	"math"

	"github.com/ledongthuc/pdf"
)

// US Letter, used when a page carries no usable MediaBox
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// maxTreeDepth bounds the walk up the page tree for inherited attributes
const maxTreeDepth = 10

// matrix is a PDF affine transform [a b c d e f]
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// multiply returns m x n, i.e. m applied first and n second
func (m matrix) multiply(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// unitArea is the area of the unit square mapped through m, which is the
// area an image XObject occupies on the page
func (m matrix) unitArea() float64 {
	return math.Abs(m[0]*m[3] - m[1]*m[2])
}

// matrixValue reads a six-number array, falling back to identity
func matrixValue(v pdf.Value) matrix {
	if v.Kind() != pdf.Array || v.Len() != 6 {
		return identity
	}
	var m matrix
	for i := range m {
		n, ok := number(v.Index(i))
		if !ok {
			return identity
		}
		m[i] = n
	}
	return m
}

// number reads an integer or real value
func number(v pdf.Value) (float64, bool) {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64()), true
	case pdf.Real:
		return v.Float64(), true
	default:
		return 0, false
	}
}

// pageBox is a page's MediaBox size
type pageBox struct {
	Width  float64
	Height float64
}

func (b pageBox) area() float64 {
	return b.Width * b.Height
}

// mediaBox returns the page's MediaBox, following inheritance through the
// page tree. ok is false when the default page size was used.
func mediaBox(page pdf.Page) (box pageBox, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			box, ok = pageBox{Width: defaultPageWidth, Height: defaultPageHeight}, false
		}
	}()

	current := page.V
	for i := 0; i < maxTreeDepth && !current.IsNull(); i++ {
		if b, found := parseBox(current.Key("MediaBox")); found {
			return b, true
		}
		current = current.Key("Parent")
	}
	return pageBox{Width: defaultPageWidth, Height: defaultPageHeight}, false
}

func parseBox(v pdf.Value) (pageBox, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return pageBox{}, false
	}
	var coords [4]float64
	for i := range coords {
		n, ok := number(v.Index(i))
		if !ok {
			return pageBox{}, false
		}
		coords[i] = n
	}
	width := math.Abs(coords[2] - coords[0])
	height := math.Abs(coords[3] - coords[1])
	if width == 0 || height == 0 {
		return pageBox{}, false
	}
	return pageBox{Width: width, Height: height}, true
}

// resources returns the page's resource dictionary, inherited if needed
func resources(page pdf.Page) pdf.Value {
	current := page.V
	for i := 0; i < maxTreeDepth && !current.IsNull(); i++ {
		if r := current.Key("Resources"); r.Kind() == pdf.Dict {
			return r
		}
		current = current.Key("Parent")
	}
	return pdf.Value{}
}
