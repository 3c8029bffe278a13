package layout

import (
	"math"
	"sort"
)

// TextSet is a set of trimmed fragment texts
type TextSet map[string]struct{}

// Has reports whether text is in the set
func (s TextSet) Has(text string) bool {
	_, ok := s[text]
	return ok
}

// Sorted returns the members in lexical order
func (s TextSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// band is a closed vertical interval
type band struct {
	lo, hi float64
}

func (b band) contains(f TextFragment) bool {
	lo := math.Min(f.Top, f.Bottom)
	hi := math.Max(f.Top, f.Bottom)
	return lo >= b.lo && hi <= b.hi
}

// pageBands returns the header and footer bands of a page: bandRatio of the
// page's fragment vertical extent at the reading-order top and bottom
func pageBands(fragments []TextFragment, bandRatio float64, axis AxisDirection) (header, footer band) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, f := range fragments {
		lo = math.Min(lo, math.Min(f.Top, f.Bottom))
		hi = math.Max(hi, math.Max(f.Top, f.Bottom))
	}
	size := (hi - lo) * bandRatio
	low := band{lo: lo, hi: lo + size}
	high := band{lo: hi - size, hi: hi}
	if axis == AxisBottomUp {
		return high, low
	}
	return low, high
}

// DetectHeadersFooters finds texts repeated in the header or footer band of
// at least minPageRatio of the pages. Fewer than two pages yields empty sets.
func DetectHeadersFooters(pages []Page, bandRatio, minPageRatio float64, axis AxisDirection) (headers, footers TextSet) {
	headers, footers = TextSet{}, TextSet{}
	if len(pages) < 2 {
		return headers, footers
	}

	headerCounts := make(map[string]int)
	footerCounts := make(map[string]int)
	for _, page := range pages {
		if len(page.Fragments) == 0 {
			continue
		}
		headerBand, footerBand := pageBands(page.Fragments, bandRatio, axis)
		seenHeader, seenFooter := TextSet{}, TextSet{}
		for _, f := range page.Fragments {
			text := f.TrimmedText()
			if text == "" {
				continue
			}
			if headerBand.contains(f) && !seenHeader.Has(text) {
				seenHeader[text] = struct{}{}
				headerCounts[text]++
			}
			if footerBand.contains(f) && !seenFooter.Has(text) {
				seenFooter[text] = struct{}{}
				footerCounts[text]++
			}
		}
	}

	threshold := float64(len(pages)) * minPageRatio
	for text, n := range headerCounts {
		if float64(n) >= threshold {
			headers[text] = struct{}{}
		}
	}
	for text, n := range footerCounts {
		if float64(n) >= threshold {
			footers[text] = struct{}{}
		}
	}
	return headers, footers
}

// RemoveRepeated drops fragments whose trimmed text is a detected header or
// footer
func RemoveRepeated(fragments []TextFragment, headers, footers TextSet) []TextFragment {
	if len(headers) == 0 && len(footers) == 0 {
		return fragments
	}
	kept := make([]TextFragment, 0, len(fragments))
	for _, f := range fragments {
		text := f.TrimmedText()
		if headers.Has(text) || footers.Has(text) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
