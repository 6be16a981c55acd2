package main

const SpatialCellSize = 8.0 // ~2x largest static obstacle radius

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte // 'o'=obstacle, 'c'=collectible
	Idx  int  // index into the corresponding flat list
}

// SpatialGrid is a fixed-size grid over the level's ground plane for
// broad-phase queries against static content
type SpatialGrid struct {
	minX, minZ float64
	cols, rows int
	cells      [][]EntityRef
}

// NewSpatialGrid creates a grid covering the rectangle [minX,maxX]x[minZ,maxZ]
func NewSpatialGrid(minX, minZ, maxX, maxZ float64) *SpatialGrid {
	cols := int((maxX-minX)/SpatialCellSize) + 1
	rows := int((maxZ-minZ)/SpatialCellSize) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &SpatialGrid{
		minX:  minX,
		minZ:  minZ,
		cols:  cols,
		rows:  rows,
		cells: make([][]EntityRef, cols*rows),
	}
}

func (g *SpatialGrid) cellRange(x, z, radius float64) (minCX, minCZ, maxCX, maxCZ int) {
	minCX = g.clampCol(int((x - radius - g.minX) / SpatialCellSize))
	maxCX = g.clampCol(int((x + radius - g.minX) / SpatialCellSize))
	minCZ = g.clampRow(int((z - radius - g.minZ) / SpatialCellSize))
	maxCZ = g.clampRow(int((z + radius - g.minZ) / SpatialCellSize))
	return
}

func (g *SpatialGrid) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

func (g *SpatialGrid) clampRow(r int) int {
	if r < 0 {
		return 0
	}
	if r >= g.rows {
		return g.rows - 1
	}
	return r
}

// Insert adds an entity reference at the given position
func (g *SpatialGrid) Insert(x, z float64, ref EntityRef) {
	g.InsertCircle(x, z, 0, ref)
}

// InsertCircle adds an entity reference to all cells overlapping its bounding box
func (g *SpatialGrid) InsertCircle(x, z, radius float64, ref EntityRef) {
	minCX, minCZ, maxCX, maxCZ := g.cellRange(x, z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cz*g.cols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// Query returns all entity refs in cells that overlap the given bounding box
func (g *SpatialGrid) Query(x, z, radius float64) []EntityRef {
	return g.QueryBuf(x, z, radius, nil)
}

// QueryBuf appends results to buf and returns the extended slice, avoiding per-call allocation.
// An entity spanning several cells is reported once per cell.
func (g *SpatialGrid) QueryBuf(x, z, radius float64, buf []EntityRef) []EntityRef {
	minCX, minCZ, maxCX, maxCZ := g.cellRange(x, z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cz*g.cols+cx]...)
		}
	}
	return buf
}
