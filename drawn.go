package main

import "math"

const (
	MaxStrokePoints = 64
	MinPointSpacing = 4.0
	MinStrokeSize   = 8.0 // thinner strokes get padded to this
	DrawnLife       = 600 // ticks
	DrawnMaxFall    = 9.0
)

// Point is a stroke vertex
type Point struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

// DrawnObject is a pencil stroke turned into a physical obstacle. Its body is
// the stroke's bounding box and its mass grows with the box area.
type DrawnObject struct {
	DynamicObject
	ID     uint32
	Owner  uint32
	Points []Point // relative to the body origin
	Life   int
	Dead   bool
}

// AppendStrokePoint adds a pointer sample to a stroke in progress, dropping
// samples that are too close together or beyond the point cap.
func AppendStrokePoint(stroke []Point, x, y float64) []Point {
	if len(stroke) >= MaxStrokePoints {
		return stroke
	}
	if n := len(stroke); n > 0 {
		last := stroke[n-1]
		if Distance(last.X, last.Y, x, y) < MinPointSpacing {
			return stroke
		}
	}
	return append(stroke, Point{X: x, Y: y})
}

// NewDrawnObject builds an obstacle from world-space stroke points. Returns
// nil for strokes with fewer than two points.
func NewDrawnObject(id, owner uint32, stroke []Point) *DrawnObject {
	if len(stroke) < 2 {
		return nil
	}
	if len(stroke) > MaxStrokePoints {
		stroke = stroke[:MaxStrokePoints]
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range stroke {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	w := math.Max(maxX-minX, MinStrokeSize)
	h := math.Max(maxY-minY, MinStrokeSize)

	d := &DrawnObject{ID: id, Owner: owner, Life: DrawnLife}
	d.X, d.Y, d.W, d.H = minX, minY, w, h
	d.Mass = math.Max(0.5, w*h/(TileSize*TileSize))
	d.Points = make([]Point, len(stroke))
	for i, pt := range stroke {
		d.Points[i] = Point{X: pt.X - minX, Y: pt.Y - minY}
	}
	return d
}

// Update applies gravity, friction and tile collision, and expires the object
func (d *DrawnObject) Update(grid *TileGrid) {
	if d.Dead {
		return
	}
	d.Life--
	if d.Life <= 0 {
		d.Dead = true
		return
	}
	d.VY = math.Min(d.VY+Gravity, DrawnMaxFall)
	if d.OnGround {
		d.VX *= GroundFriction
	}
	ResolveTiles(&d.Body, grid)
	if d.Y > grid.HeightPx() {
		d.Dead = true
	}
}

// WorldPoints returns the stroke in world coordinates
func (d *DrawnObject) WorldPoints() []Point {
	out := make([]Point, len(d.Points))
	for i, pt := range d.Points {
		out[i] = Point{X: d.X + pt.X, Y: d.Y + pt.Y}
	}
	return out
}

// ToSpawn describes the object for a DRAW_OBJ event
func (d *DrawnObject) ToSpawn() DrawSpawn {
	return DrawSpawn{ID: d.ID, Owner: d.Owner, Points: d.WorldPoints()}
}
