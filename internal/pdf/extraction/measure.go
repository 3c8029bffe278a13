package extraction

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// pageMeasure holds what the content stream walk found on one page
type pageMeasure struct {
	imageArea float64
	figures   int
}

// contentWalker interprets content streams, tracking the current
// transformation matrix so image placements can be sized
type contentWalker struct {
	maxDepth int
	measure  pageMeasure
}

// measurePage walks the page's content streams. Every XObject painted at page
// level and every rectangle path counts as a figure; images nested in forms
// add area but are not counted again.
func measurePage(page pdf.Page, maxDepth int) (result pageMeasure, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream walk failed: %v", r)
		}
	}()

	w := &contentWalker{maxDepth: maxDepth}
	contents := page.V.Key("Contents")
	res := resources(page)
	switch contents.Kind() {
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			w.walk(contents.Index(i), res, identity, 0)
		}
	case pdf.Stream:
		w.walk(contents, res, identity, 0)
	}
	return w.measure, nil
}

func (w *contentWalker) walk(strm, res pdf.Value, base matrix, depth int) {
	ctm := base
	var saved []matrix

	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		switch op {
		case "q":
			saved = append(saved, ctm)
		case "Q":
			if n := len(saved); n > 0 {
				ctm = saved[n-1]
				saved = saved[:n-1]
			}
		case "cm":
			if m, ok := popMatrix(stk); ok {
				ctm = m.multiply(ctm)
			}
		case "re":
			if depth == 0 {
				w.measure.figures++
			}
		case "Do":
			name := stk.Pop().Name()
			xobj := res.Key("XObject").Key(name)
			w.paint(xobj, res, ctm, depth)
		}
		// Operands of operators not handled above must not leak into the
		// next cm or Do.
		for stk.Len() > 0 {
			stk.Pop()
		}
	})
}

// paint accounts for one XObject invocation
func (w *contentWalker) paint(xobj, res pdf.Value, ctm matrix, depth int) {
	if xobj.IsNull() {
		return
	}
	if depth == 0 {
		w.measure.figures++
	}

	switch xobj.Key("Subtype").Name() {
	case "Image":
		w.measure.imageArea += ctm.unitArea()
	case "Form":
		if depth >= w.maxDepth {
			return
		}
		formRes := xobj.Key("Resources")
		if formRes.Kind() != pdf.Dict {
			formRes = res
		}
		w.walk(xobj, formRes, matrixValue(xobj.Key("Matrix")).multiply(ctm), depth+1)
	}
}

// popMatrix pops the six operands of a cm operator
func popMatrix(stk *pdf.Stack) (matrix, bool) {
	if stk.Len() < 6 {
		return identity, false
	}
	var m matrix
	for i := 5; i >= 0; i-- {
		n, ok := number(stk.Pop())
		if !ok {
			return identity, false
		}
		m[i] = n
	}
	return m, true
}

// pageDimensions reads page sizes with pdfcpu, which resolves inherited
// boxes and tolerates damaged cross-reference tables
func pageDimensions(path string) ([]pageBox, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	boxes := make([]pageBox, len(dims))
	for i, d := range dims {
		boxes[i] = pageBox{Width: d.Width, Height: d.Height}
	}
	return boxes, nil
}

// textArea sums the bounding box areas of the page's fragments
func textArea(fragments []layout.TextFragment) float64 {
	var total float64
	for _, f := range fragments {
		total += f.Area()
	}
	return total
}
