package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frag builds a top-down fragment whose vertical center is center
func frag(text string, left, right, center, fontSize float64) TextFragment {
	return TextFragment{
		Text:       text,
		Left:       left,
		Right:      right,
		Top:        center - fontSize/2,
		Bottom:     center + fontSize/2,
		FontSize:   fontSize,
		PageNumber: 1,
	}
}

func TestDetectColumns_Empty(t *testing.T) {
	assert.Nil(t, DetectColumns(nil, 10))
}

func TestDetectColumns_TwoColumns(t *testing.T) {
	fragments := []TextFragment{
		frag("a", 50, 150, 100, 10),
		frag("b", 52, 140, 120, 10),
		frag("c", 300, 420, 100, 10),
		frag("d", 305, 400, 120, 10),
	}

	columns := DetectColumns(fragments, 10)
	require.Len(t, columns, 2)

	assert.Equal(t, 0, columns[0].Index)
	assert.InDelta(t, 51.0, columns[0].Left, 1e-9)
	assert.InDelta(t, 302.5-10, columns[0].Right, 1e-9)

	assert.Equal(t, 1, columns[1].Index)
	assert.InDelta(t, 302.5, columns[1].Left, 1e-9)
	assert.InDelta(t, 420.0, columns[1].Right, 1e-9, "last column extends to the widest fragment")
}

func TestDetectColumns_ChainClustering(t *testing.T) {
	// Each step is within tolerance of the previous value, so all four join
	// one cluster even though it spans more than twice the tolerance.
	fragments := []TextFragment{
		frag("a", 0, 5, 10, 10),
		frag("b", 8, 13, 20, 10),
		frag("c", 16, 21, 30, 10),
		frag("d", 24, 29, 40, 10),
	}

	columns := DetectColumns(fragments, 10)
	require.Len(t, columns, 1)
	assert.InDelta(t, 12.0, columns[0].Left, 1e-9)
	assert.InDelta(t, 29.0, columns[0].Right, 1e-9)
}

func TestDetectColumns_IgnoresDuplicateLefts(t *testing.T) {
	fragments := []TextFragment{
		frag("a", 0, 5, 10, 10),
		frag("b", 0, 5, 20, 10),
		frag("c", 0, 5, 30, 10),
		frag("d", 9, 15, 40, 10),
	}

	columns := DetectColumns(fragments, 10)
	require.Len(t, columns, 1)
	assert.InDelta(t, 4.5, columns[0].Left, 1e-9, "mean is over distinct values")
}

func TestDetectColumns_StableUnderPermutation(t *testing.T) {
	fragments := []TextFragment{
		frag("a", 50, 150, 100, 10),
		frag("b", 57, 150, 130, 10),
		frag("c", 200, 260, 100, 10),
		frag("d", 212, 290, 130, 10),
		frag("e", 400, 480, 100, 10),
		frag("f", 401, 500, 160, 10),
		frag("g", 640, 700, 100, 10),
	}
	want := DetectColumns(fragments, 10)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]TextFragment, len(fragments))
		copy(shuffled, fragments)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, DetectColumns(shuffled, 10))
	}
}

func TestDetectRows_Empty(t *testing.T) {
	assert.Nil(t, DetectRows(nil, 2, 0.5, AxisTopDown))
}

func TestDetectRows_SeparatesByPositionAndFont(t *testing.T) {
	fragments := []TextFragment{
		frag("r0c1", 300, 350, 100, 10),
		frag("r0c0", 50, 100, 101, 10),
		frag("r1c0", 50, 100, 150, 10),
		frag("big", 300, 350, 151, 18),
	}

	rows := DetectRows(fragments, 2, 0.5, AxisTopDown)
	require.Len(t, rows, 3)

	// "big" starts higher (its box is taller) so it is read first; "r1c0"
	// sits on the same line but its font size differs too much to join.
	assert.Equal(t, []string{"r0c1", "r0c0"}, fragmentTexts(rows[0].Fragments))
	assert.Equal(t, []string{"big"}, fragmentTexts(rows[1].Fragments))
	assert.Equal(t, []string{"r1c0"}, fragmentTexts(rows[2].Fragments))
	for i, r := range rows {
		assert.Equal(t, i, r.Index)
	}
}

func TestDetectRows_RunningCenterDrift(t *testing.T) {
	// Font size 10 gives a vertical tolerance of 5. The second fragment is
	// just inside it; the running center moves to 2.45, which leaves the third
	// fragment 7.35 away.
	fragments := []TextFragment{
		frag("first", 0, 10, 0, 10),
		frag("second", 0, 10, 4.9, 10),
		frag("third", 0, 10, 9.8, 10),
	}

	rows := DetectRows(fragments, 2, 0.5, AxisTopDown)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"first", "second"}, fragmentTexts(rows[0].Fragments))
	assert.Equal(t, []string{"third"}, fragmentTexts(rows[1].Fragments))
}

func TestDetectRows_RunningAverageNotFullMean(t *testing.T) {
	// Running center: 0 -> 2 -> 4, so the fragment at 9 is exactly 5 away and
	// joins. A mean over all members (3.33) would have put it 5.67 away.
	fragments := []TextFragment{
		frag("a", 0, 10, 0, 10),
		frag("b", 20, 30, 4, 10),
		frag("c", 40, 50, 6, 10),
		frag("d", 60, 70, 9, 10),
	}

	rows := DetectRows(fragments, 2, 0.5, AxisTopDown)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Fragments, 4)
}

func TestRowCluster_Add(t *testing.T) {
	c := newRowCluster(frag("a", 0, 10, 0, 10))
	c.add(frag("b", 0, 10, 4, 12))
	assert.InDelta(t, 2.0, c.center, 1e-9)
	assert.InDelta(t, 11.0, c.fontSize, 1e-9)

	c.add(frag("c", 0, 10, 6, 12))
	assert.InDelta(t, 4.0, c.center, 1e-9)
	assert.InDelta(t, 11.5, c.fontSize, 1e-9)
	assert.Len(t, c.members, 3)
}

func TestAssignColumn(t *testing.T) {
	columns := []Column{
		{Left: 50, Right: 290, Index: 0},
		{Left: 300, Right: 500, Index: 1},
	}

	tests := []struct {
		name     string
		fragment TextFragment
		want     int
	}{
		{"left edge inside first column", frag("x", 60, 100, 0, 10), 0},
		{"left edge inside second column", frag("x", 350, 400, 0, 10), 1},
		{"span overlaps first column", frag("x", 20, 70, 0, 10), 0},
		{"gap between columns overlapping second", frag("x", 295, 320, 0, 10), 1},
		{"left of everything falls back to nearest", frag("x", 0, 10, 0, 10), 0},
		{"right of everything falls back to nearest", frag("x", 600, 650, 0, 10), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AssignColumn(tt.fragment, columns)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssignColumn_NoColumns(t *testing.T) {
	_, ok := AssignColumn(frag("x", 0, 10, 0, 10), nil)
	assert.False(t, ok)
}

func TestMergeCells(t *testing.T) {
	first := Cell{Text: "Total", RowIndex: 0, ColIndex: 0, Left: 50, Right: 100, Top: 0, Bottom: 10, FontSize: 10}

	t.Run("gap within threshold merges", func(t *testing.T) {
		second := Cell{Text: "amount", RowIndex: 1, ColIndex: 0, Left: 45, Right: 120, Top: 13, Bottom: 23, FontSize: 10}

		merged := MergeCells([]Cell{second, first}, 5)
		require.Len(t, merged, 1)
		assert.Equal(t, "Total amount", merged[0].Text)
		assert.Equal(t, 0, merged[0].RowIndex)
		assert.Equal(t, 0.0, merged[0].Top)
		assert.Equal(t, 23.0, merged[0].Bottom)
		assert.Equal(t, 45.0, merged[0].Left)
		assert.Equal(t, 120.0, merged[0].Right)
	})

	t.Run("gap beyond threshold stays separate", func(t *testing.T) {
		second := Cell{Text: "amount", RowIndex: 1, ColIndex: 0, Left: 50, Right: 100, Top: 20, Bottom: 30, FontSize: 10}

		merged := MergeCells([]Cell{first, second}, 5)
		require.Len(t, merged, 2)
		assert.Equal(t, "Total", merged[0].Text)
		assert.Equal(t, "amount", merged[1].Text)
	})

	t.Run("different columns never merge", func(t *testing.T) {
		other := Cell{Text: "42", RowIndex: 1, ColIndex: 1, Left: 300, Right: 320, Top: 11, Bottom: 21, FontSize: 10}

		merged := MergeCells([]Cell{first, other}, 5)
		require.Len(t, merged, 2)
		assert.Equal(t, 0, merged[0].ColIndex)
		assert.Equal(t, 1, merged[1].ColIndex)
	})

	t.Run("bottom-up coordinates", func(t *testing.T) {
		upper := Cell{Text: "Total", RowIndex: 0, ColIndex: 0, Left: 50, Right: 100, Top: 700, Bottom: 690}
		lower := Cell{Text: "amount", RowIndex: 1, ColIndex: 0, Left: 50, Right: 100, Top: 687, Bottom: 677}

		merged := MergeCells([]Cell{upper, lower}, 5)
		require.Len(t, merged, 1)
		assert.Equal(t, 700.0, merged[0].Top)
		assert.Equal(t, 677.0, merged[0].Bottom)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, MergeCells(nil, 5))
	})
}

func TestBuildGrid_Rectangular(t *testing.T) {
	cells := []Cell{
		{Text: "a", RowIndex: 0, ColIndex: 0},
		{Text: "b", RowIndex: 2, ColIndex: 1},
		{Text: "c", RowIndex: 1, ColIndex: 3},
	}

	grid := BuildGrid(cells)
	require.Len(t, grid, 3)
	for _, row := range grid {
		assert.Len(t, row, 4)
	}
	assert.Equal(t, []string{"a", "", "", ""}, grid[0])
	assert.Equal(t, []string{"", "", "", "c"}, grid[1])
	assert.Equal(t, []string{"", "b", "", ""}, grid[2])
}

func TestBuildGrid_SharedPositionKeepsBothTexts(t *testing.T) {
	cells := []Cell{
		{Text: "Net", RowIndex: 0, ColIndex: 0},
		{Text: "total", RowIndex: 0, ColIndex: 0},
	}

	grid := BuildGrid(cells)
	assert.Equal(t, [][]string{{"Net total"}}, grid)
}

func TestBuildGrid_Empty(t *testing.T) {
	assert.Nil(t, BuildGrid(nil))
}

func fragmentTexts(fragments []TextFragment) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = f.Text
	}
	return out
}
