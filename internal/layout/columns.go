package layout

import (
	"math"
	"sort"
)

// DetectColumns clusters the distinct left edges of a page's fragments into
// columns, ordered left to right.
//
// Clustering is a single chain pass: a value joins the current cluster when
// it is within tolerance of the last value added, so a cluster can grow wider
// than 2*tolerance when left edges step up gradually.
func DetectColumns(fragments []TextFragment, tolerance float64) []Column {
	if len(fragments) == 0 {
		return nil
	}

	lefts := distinctLefts(fragments)

	var anchors []float64
	cluster := []float64{lefts[0]}
	for _, v := range lefts[1:] {
		if v-cluster[len(cluster)-1] <= tolerance {
			cluster = append(cluster, v)
			continue
		}
		anchors = append(anchors, mean(cluster))
		cluster = []float64{v}
	}
	anchors = append(anchors, mean(cluster))

	maxRight := math.Inf(-1)
	for _, f := range fragments {
		maxRight = math.Max(maxRight, f.Right)
	}

	columns := make([]Column, len(anchors))
	for i, left := range anchors {
		right := maxRight
		if i+1 < len(anchors) {
			right = anchors[i+1] - tolerance
		}
		columns[i] = Column{Left: left, Right: right, Index: i}
	}
	return columns
}

func distinctLefts(fragments []TextFragment) []float64 {
	seen := make(map[float64]struct{}, len(fragments))
	lefts := make([]float64, 0, len(fragments))
	for _, f := range fragments {
		if _, ok := seen[f.Left]; ok {
			continue
		}
		seen[f.Left] = struct{}{}
		lefts = append(lefts, f.Left)
	}
	sort.Float64s(lefts)
	return lefts
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
