package main

const SpatialCellSize = 128.0 // 4 tiles, larger than any enemy

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte // 'e'=enemy, 'd'=drawn object
	Idx  int  // index into the corresponding flat list
}

// SpatialGrid is a broad-phase index rebuilt every tick from the enemy list
type SpatialGrid struct {
	cols, rows int
	cells      [][]EntityRef
}

// NewSpatialGrid sizes the grid for a level
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(width/SpatialCellSize) + 1
	rows := int(height/SpatialCellSize) + 1
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]EntityRef, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) span(x0, y0, x1, y1 float64) (int, int, int, int) {
	minCX := int(x0 / SpatialCellSize)
	maxCX := int(x1 / SpatialCellSize)
	minCY := int(y0 / SpatialCellSize)
	maxCY := int(y1 / SpatialCellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}
	return minCX, maxCX, minCY, maxCY
}

// InsertBox adds an entity reference to all cells overlapping its box
func (g *SpatialGrid) InsertBox(b Box, ref EntityRef) {
	minCX, maxCX, minCY, maxCY := g.span(b.Left(), b.Top(), b.Right(), b.Bottom())
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// QueryBuf appends refs from every cell overlapping b. A ref spanning several
// cells can appear more than once; callers dedupe by entity state.
func (g *SpatialGrid) QueryBuf(b Box, buf []EntityRef) []EntityRef {
	minCX, maxCX, minCY, maxCY := g.span(b.Left(), b.Top(), b.Right(), b.Bottom())
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
