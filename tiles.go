package main

import "math"

// TileSize is the edge length of one grid cell in world pixels
const TileSize = 32.0

// TileKind classifies one grid cell
type TileKind uint8

const (
	TileAir TileKind = iota
	TileGround
	TileBrick
	TileQuestion
	TileSpent
	TilePipeTopLeft
	TilePipeTopRight
	TilePipeLeft
	TilePipeRight
	TileHazard
	TileInvisible
)

// BlockContent is what a question block releases when struck
type BlockContent uint8

const (
	ContentCoin BlockContent = iota
	ContentPowerUp
	ContentOneUp
)

// HitOutcome reports what a head-hit did to a cell
type HitOutcome uint8

const (
	HitNone   HitOutcome = iota // not hittable, nothing changed
	HitBump                     // brick bumped by a small player
	HitBreak                    // brick destroyed
	HitReveal                   // question block turned spent
)

// TileChange is one entry of the per-level mutation log
type TileChange struct {
	CX   int      `msgpack:"cx"`
	CY   int      `msgpack:"cy"`
	Kind TileKind `msgpack:"k"`
}

// TileGrid is the level geometry. Only head-hits mutate it.
type TileGrid struct {
	W, H     int
	cells    []TileKind
	contents map[int]BlockContent
	changes  []TileChange
}

// NewTileGrid creates an all-air grid
func NewTileGrid(w, h int) *TileGrid {
	return &TileGrid{
		W:        w,
		H:        h,
		cells:    make([]TileKind, w*h),
		contents: make(map[int]BlockContent),
	}
}

func (g *TileGrid) idx(cx, cy int) int {
	return cy*g.W + cx
}

func (g *TileGrid) inside(cx, cy int) bool {
	return cx >= 0 && cx < g.W && cy >= 0 && cy < g.H
}

// At returns the tile at a cell. Columns outside the grid read as world walls,
// rows above and below read as air.
func (g *TileGrid) At(cx, cy int) TileKind {
	if cx < 0 || cx >= g.W {
		return TileInvisible
	}
	if cy < 0 || cy >= g.H {
		return TileAir
	}
	return g.cells[g.idx(cx, cy)]
}

// Set writes a tile without logging it (level construction)
func (g *TileGrid) Set(cx, cy int, k TileKind) {
	if !g.inside(cx, cy) {
		return
	}
	g.cells[g.idx(cx, cy)] = k
}

// SetContent assigns what a question block holds
func (g *TileGrid) SetContent(cx, cy int, c BlockContent) {
	if !g.inside(cx, cy) {
		return
	}
	g.contents[g.idx(cx, cy)] = c
}

// Content returns the contents of a question block (coins by default)
func (g *TileGrid) Content(cx, cy int) BlockContent {
	return g.contents[g.idx(cx, cy)]
}

// IsSolid reports whether a cell blocks movement
func (g *TileGrid) IsSolid(cx, cy int) bool {
	return g.At(cx, cy) != TileAir
}

// IsHazard reports whether a cell hurts on contact
func (g *TileGrid) IsHazard(cx, cy int) bool {
	return g.At(cx, cy) == TileHazard
}

// WidthPx returns the level width in world pixels
func (g *TileGrid) WidthPx() float64 {
	return float64(g.W) * TileSize
}

// HeightPx returns the level height in world pixels
func (g *TileGrid) HeightPx() float64 {
	return float64(g.H) * TileSize
}

// Hit applies a head-hit from below. Non-hittable cells are left alone.
func (g *TileGrid) Hit(cx, cy int, canBreak bool) HitOutcome {
	if !g.inside(cx, cy) {
		return HitNone
	}
	switch g.At(cx, cy) {
	case TileQuestion:
		g.mutate(cx, cy, TileSpent)
		return HitReveal
	case TileBrick:
		if !canBreak {
			return HitBump
		}
		g.mutate(cx, cy, TileAir)
		return HitBreak
	}
	return HitNone
}

// Apply sets a cell from a remote mutation. Spent cells never revert and
// repeated application is a no-op.
func (g *TileGrid) Apply(c TileChange) bool {
	if !g.inside(c.CX, c.CY) {
		return false
	}
	cur := g.At(c.CX, c.CY)
	if cur == c.Kind || cur == TileSpent {
		return false
	}
	g.mutate(c.CX, c.CY, c.Kind)
	return true
}

func (g *TileGrid) mutate(cx, cy int, k TileKind) {
	g.cells[g.idx(cx, cy)] = k
	g.changes = append(g.changes, TileChange{CX: cx, CY: cy, Kind: k})
}

// Changes returns the mutation log since the level was loaded
func (g *TileGrid) Changes() []TileChange {
	return g.changes
}

// CellAt converts a world coordinate to a cell coordinate
func CellAt(v float64) int {
	return int(math.Floor(v / TileSize))
}
