package layout

import (
	"math"
	"sort"
)

// AssignColumn returns the index of the column fragment f belongs to. A
// column matches when it contains f's left edge or overlaps f's span; the
// first match in left-to-right order wins. Without a match the column whose
// left edge is nearest is used. ok is false only when columns is empty.
func AssignColumn(f TextFragment, columns []Column) (int, bool) {
	if len(columns) == 0 {
		return 0, false
	}

	for _, col := range columns {
		contains := col.Left <= f.Left && f.Left <= col.Right
		overlaps := f.Left < col.Right && f.Right > col.Left
		if contains || overlaps {
			return col.Index, true
		}
	}

	nearest := columns[0]
	best := math.Abs(f.Left - nearest.Left)
	for _, col := range columns[1:] {
		if d := math.Abs(f.Left - col.Left); d < best {
			best = d
			nearest = col
		}
	}
	return nearest.Index, true
}

// AssignCells turns every fragment of every row into a cell addressed by its
// row index and assigned column
func AssignCells(rows []Row, columns []Column) []Cell {
	var cells []Cell
	for _, row := range rows {
		for _, f := range row.Fragments {
			col, ok := AssignColumn(f, columns)
			if !ok {
				continue
			}
			cells = append(cells, Cell{
				Text:     f.Text,
				RowIndex: row.Index,
				ColIndex: col,
				Left:     f.Left,
				Right:    f.Right,
				Top:      f.Top,
				Bottom:   f.Bottom,
				FontSize: f.FontSize,
			})
		}
	}
	return cells
}

// MergeCells collapses vertically stacked cells of one column into a single
// cell when the gap between them is within gapThreshold. Output is ordered by
// column, then row.
func MergeCells(cells []Cell, gapThreshold float64) []Cell {
	if len(cells) == 0 {
		return nil
	}

	byColumn := make(map[int][]Cell)
	var colIndexes []int
	for _, c := range cells {
		if _, ok := byColumn[c.ColIndex]; !ok {
			colIndexes = append(colIndexes, c.ColIndex)
		}
		byColumn[c.ColIndex] = append(byColumn[c.ColIndex], c)
	}
	sort.Ints(colIndexes)

	merged := make([]Cell, 0, len(cells))
	for _, colIdx := range colIndexes {
		column := byColumn[colIdx]
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].RowIndex < column[j].RowIndex
		})

		current := column[0]
		for _, next := range column[1:] {
			if math.Abs(next.Top-current.Bottom) <= gapThreshold {
				current = joinCells(current, next)
				continue
			}
			merged = append(merged, current)
			current = next
		}
		merged = append(merged, current)
	}
	return merged
}

// joinCells appends next to current. The result keeps current's address and
// covers the union of both boxes.
func joinCells(current, next Cell) Cell {
	topDown := current.Top <= current.Bottom
	current.Text = current.Text + " " + next.Text
	current.Left = math.Min(current.Left, next.Left)
	current.Right = math.Max(current.Right, next.Right)
	current.Top = unionEdge(current.Top, next.Top, topDown)
	current.Bottom = unionEdge(current.Bottom, next.Bottom, !topDown)
	return current
}

// unionEdge picks the outer of two edges; smaller when wantMin
func unionEdge(a, b float64, wantMin bool) float64 {
	if wantMin {
		return math.Min(a, b)
	}
	return math.Max(a, b)
}
