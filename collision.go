package main

import "math"

const (
	StompMargin     = 4.0  // minimum horizontal overlap for a stomp
	ImpulseTransfer = 0.35 // fraction of momentum pushed into a dynamic object
	sweepEpsilon    = 1e-6
)

// Box is an axis-aligned rectangle, X/Y is the top-left corner
type Box struct {
	X, Y, W, H float64
}

func (b Box) Left() float64    { return b.X }
func (b Box) Right() float64   { return b.X + b.W }
func (b Box) Top() float64     { return b.Y }
func (b Box) Bottom() float64  { return b.Y + b.H }
func (b Box) CenterX() float64 { return b.X + b.W/2 }
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Body is the movable shape shared by every simulated entity
type Body struct {
	X, Y       float64
	VX, VY     float64
	W, H       float64
	OnGround   bool
	HitWall    bool
	HitCeiling bool
}

// Box returns the current bounding box
func (b *Body) Box() Box {
	return Box{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

func (b *Body) Bottom() float64  { return b.Y + b.H }
func (b *Body) CenterX() float64 { return b.X + b.W/2 }
func (b *Body) CenterY() float64 { return b.Y + b.H/2 }

// CellHit is a grid cell struck from below
type CellHit struct {
	CX, CY int
}

// Overlaps reports whether two boxes intersect (touching edges do not count)
func Overlaps(a, b Box) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// CheckCircleBox checks whether a circle touches a box
func CheckCircleBox(cx, cy, r float64, b Box) bool {
	nx := Clamp(cx, b.Left(), b.Right())
	ny := Clamp(cy, b.Top(), b.Bottom())
	dx := cx - nx
	dy := cy - ny
	return dx*dx+dy*dy <= r*r
}

// ResolveTiles moves b by its velocity one axis at a time against the grid and
// returns the cells struck from below. Rising bodies resolve Y first so a block
// hit registers even when horizontal motion would clear the column.
func ResolveTiles(b *Body, g *TileGrid) []CellHit {
	b.OnGround = false
	b.HitWall = false
	b.HitCeiling = false

	if b.VY < 0 {
		hits := resolveY(b, g)
		resolveX(b, g)
		return hits
	}
	resolveX(b, g)
	return resolveY(b, g)
}

func cellSpan(lo, size float64) (int, int) {
	return CellAt(lo), CellAt(lo + size - sweepEpsilon)
}

func resolveX(b *Body, g *TileGrid) {
	b.X += b.VX
	if b.VX == 0 {
		return
	}
	y0, y1 := cellSpan(b.Y, b.H)
	x0, x1 := cellSpan(b.X, b.W)

	if b.VX > 0 {
		for cx := x0; cx <= x1; cx++ {
			for cy := y0; cy <= y1; cy++ {
				if g.IsSolid(cx, cy) {
					b.X = float64(cx)*TileSize - b.W
					b.VX = 0
					b.HitWall = true
					return
				}
			}
		}
		return
	}
	for cx := x1; cx >= x0; cx-- {
		for cy := y0; cy <= y1; cy++ {
			if g.IsSolid(cx, cy) {
				b.X = float64(cx+1) * TileSize
				b.VX = 0
				b.HitWall = true
				return
			}
		}
	}
}

func resolveY(b *Body, g *TileGrid) []CellHit {
	b.Y += b.VY
	if b.VY == 0 {
		return nil
	}
	x0, x1 := cellSpan(b.X, b.W)
	y0, y1 := cellSpan(b.Y, b.H)

	if b.VY > 0 {
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				if g.IsSolid(cx, cy) {
					b.Y = float64(cy)*TileSize - b.H
					b.VY = 0
					b.OnGround = true
					return nil
				}
			}
		}
		return nil
	}

	for cy := y1; cy >= y0; cy-- {
		var hits []CellHit
		for cx := x0; cx <= x1; cx++ {
			if g.IsSolid(cx, cy) {
				hits = append(hits, CellHit{CX: cx, CY: cy})
			}
		}
		if len(hits) > 0 {
			b.Y = float64(cy+1) * TileSize
			b.VY = 0
			b.HitCeiling = true
			return hits
		}
	}
	return nil
}

// NearestHit picks the struck cell closest to the body's horizontal center
func NearestHit(b *Body, hits []CellHit) (CellHit, bool) {
	if len(hits) == 0 {
		return CellHit{}, false
	}
	best := hits[0]
	bestD := math.Inf(1)
	cx := b.CenterX()
	for _, h := range hits {
		d := math.Abs((float64(h.CX)+0.5)*TileSize - cx)
		if d < bestD {
			bestD = d
			best = h
		}
	}
	return best, true
}

// StompCheck is true only when the attacker is falling, its feet are at or
// above the defender's vertical midpoint and the boxes overlap horizontally by
// more than StompMargin.
func StompCheck(attacker, defender *Body) bool {
	if attacker.VY <= 0 {
		return false
	}
	if attacker.Bottom() > defender.CenterY() {
		return false
	}
	overlap := math.Min(attacker.X+attacker.W, defender.X+defender.W) - math.Max(attacker.X, defender.X)
	return overlap > StompMargin
}

// DynamicObject is a non-tile rectangle entities can push or stand on.
// Kinematic objects are never moved by impulses.
type DynamicObject struct {
	Body
	Mass      float64
	Kinematic bool
}

// ResolveDynamicObject pushes b out of obj along the axis of minimum
// penetration and transfers part of b's momentum into obj. Returns false when
// the two do not overlap.
func ResolveDynamicObject(b *Body, obj *DynamicObject) bool {
	if !Overlaps(b.Box(), obj.Box()) {
		return false
	}
	penX := math.Min(b.X+b.W, obj.X+obj.W) - math.Max(b.X, obj.X)
	penY := math.Min(b.Y+b.H, obj.Y+obj.H) - math.Max(b.Y, obj.Y)

	transfer := func(v float64) float64 {
		if obj.Kinematic {
			return 0
		}
		mass := obj.Mass
		if mass <= 0 {
			mass = 1
		}
		return v * ImpulseTransfer / mass
	}

	if penY <= penX {
		if b.CenterY() < obj.CenterY() {
			b.Y = obj.Y - b.H
			if b.VY > obj.VY {
				obj.VY += transfer(b.VY)
				b.VY = obj.VY
			}
			b.OnGround = true
		} else {
			b.Y = obj.Y + obj.H
			if b.VY < 0 {
				obj.VY += transfer(b.VY)
				b.VY = 0
			}
			b.HitCeiling = true
		}
		return true
	}

	if b.CenterX() < obj.CenterX() {
		b.X = obj.X - b.W
		if b.VX > 0 {
			obj.VX += transfer(b.VX)
			b.VX = 0
		}
	} else {
		b.X = obj.X + obj.W
		if b.VX < 0 {
			obj.VX += transfer(b.VX)
			b.VX = 0
		}
	}
	b.HitWall = true
	return true
}
