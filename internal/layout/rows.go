package layout

import (
	"math"
	"sort"
)

// rowCluster accumulates fragments believed to share one visual row. center
// and fontSize are running averages: each new member moves them halfway
// toward its own value, so the cluster drifts toward later members.
type rowCluster struct {
	members  []TextFragment
	center   float64
	fontSize float64
}

func newRowCluster(f TextFragment) *rowCluster {
	return &rowCluster{
		members:  []TextFragment{f},
		center:   f.Center(),
		fontSize: f.FontSize,
	}
}

// accepts reports whether f belongs to the cluster's row
func (c *rowCluster) accepts(f TextFragment, fontSizeTolerance, verticalToleranceFactor float64) bool {
	verticalDistance := math.Abs(f.Center() - c.center)
	fontDiff := math.Abs(f.FontSize - c.fontSize)
	verticalTolerance := (f.FontSize + c.fontSize) / 2 * verticalToleranceFactor
	return verticalDistance <= verticalTolerance && fontDiff <= fontSizeTolerance
}

func (c *rowCluster) add(f TextFragment) {
	c.members = append(c.members, f)
	c.center = (c.center + f.Center()) / 2
	c.fontSize = (c.fontSize + f.FontSize) / 2
}

// SortReadingOrder returns a copy of fragments sorted top to bottom in
// reading order for the given axis, left to right within equal positions
func SortReadingOrder(fragments []TextFragment, axis AxisDirection) []TextFragment {
	sorted := make([]TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := axis.readingKey(sorted[i].Top), axis.readingKey(sorted[j].Top)
		if ki != kj {
			return ki < kj
		}
		return sorted[i].Left < sorted[j].Left
	})
	return sorted
}

// DetectRows groups a page's fragments into rows in one streaming pass. Each
// fragment is compared only against the current cluster; once a fragment
// starts a new row the previous row is final.
func DetectRows(fragments []TextFragment, fontSizeTolerance, verticalToleranceFactor float64, axis AxisDirection) []Row {
	if len(fragments) == 0 {
		return nil
	}

	var rows []Row
	var current *rowCluster
	finalize := func() {
		rows = append(rows, Row{Index: len(rows), Fragments: current.members})
	}

	for _, f := range SortReadingOrder(fragments, axis) {
		if current == nil {
			current = newRowCluster(f)
			continue
		}
		if current.accepts(f, fontSizeTolerance, verticalToleranceFactor) {
			current.add(f)
			continue
		}
		finalize()
		current = newRowCluster(f)
	}
	finalize()

	return rows
}
