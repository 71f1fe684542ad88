package main

import "math"

const (
	PlatformW     = 96.0
	PlatformH     = 16.0
	PlatformSpeed = 1.2
	PlatformRange = 4 * TileSize // travel from the spawn point
)

// Platform is a kinematic moving platform. The host moves it, clients mirror
// its position from snapshots. Bodies standing on it are carried along.
type Platform struct {
	DynamicObject
	ID       uint32
	Vertical bool
	originX  float64
	originY  float64
	dir      float64
	snapX    float64
	snapY    float64
	synced   bool
}

// NewPlatform places a horizontal or vertical platform at cell (cx, cy)
func NewPlatform(id uint32, cx, cy int, vertical bool) *Platform {
	p := &Platform{ID: id, Vertical: vertical, dir: 1}
	p.W, p.H = PlatformW, PlatformH
	p.X = float64(cx) * TileSize
	p.Y = float64(cy) * TileSize
	p.Kinematic = true
	p.Mass = math.Inf(1)
	p.originX, p.originY = p.X, p.Y
	p.snapX, p.snapY = p.X, p.Y
	return p
}

// Update moves the platform back and forth along its track
func (p *Platform) Update() {
	if p.Vertical {
		p.VX, p.VY = 0, PlatformSpeed*p.dir
		if (p.dir > 0 && p.Y+p.VY > p.originY+PlatformRange) || (p.dir < 0 && p.Y+p.VY < p.originY) {
			p.dir = -p.dir
			p.VY = -p.VY
		}
	} else {
		p.VX, p.VY = PlatformSpeed*p.dir, 0
		if (p.dir > 0 && p.X+p.VX > p.originX+PlatformRange) || (p.dir < 0 && p.X+p.VX < p.originX) {
			p.dir = -p.dir
			p.VX = -p.VX
		}
	}
	p.X += p.VX
	p.Y += p.VY
}

// Carry moves a body that stands on the platform along with it. It must run
// after the platform moved and before the body is resolved against it.
func (p *Platform) Carry(b *Body) {
	if !p.Supports(b) {
		return
	}
	b.X += p.VX
	b.Y += p.VY
}

// Supports reports whether b is resting on top of the platform
func (p *Platform) Supports(b *Body) bool {
	prevBottom := b.Y + b.H - p.VY
	if math.Abs(prevBottom-p.Y) > 2 && math.Abs(b.Y+b.H-p.Y) > 2 {
		return false
	}
	return b.X+b.W > p.X && b.X < p.X+p.W
}

// ToSnapshot converts to protocol state
func (p *Platform) ToSnapshot() PlatformSnapshot {
	return PlatformSnapshot{ID: p.ID, X: round1(p.X), Y: round1(p.Y)}
}

// Drift extrapolates a mirror between snapshots
func (p *Platform) Drift() {
	p.X += p.VX
	p.Y += p.VY
}

// ApplySnapshot overwrites a mirror from host state; velocity is estimated
// from the previous snapshot so riders keep moving between snapshots. The
// first snapshot after a load only places the mirror, and the estimate never
// exceeds the platform's own speed.
func (p *Platform) ApplySnapshot(s PlatformSnapshot) {
	if p.synced {
		p.VX = Clamp((s.X-p.snapX)/SnapshotEvery, -PlatformSpeed, PlatformSpeed)
		p.VY = Clamp((s.Y-p.snapY)/SnapshotEvery, -PlatformSpeed, PlatformSpeed)
	} else {
		p.VX, p.VY = 0, 0
	}
	p.synced = true
	p.snapX, p.snapY = s.X, s.Y
	p.X, p.Y = s.X, s.Y
}

func platformFromSnapshot(s PlatformSnapshot) *Platform {
	p := &Platform{ID: s.ID, dir: 1}
	p.W, p.H = PlatformW, PlatformH
	p.Kinematic = true
	p.Mass = math.Inf(1)
	p.X, p.Y = s.X, s.Y
	p.originX, p.originY = s.X, s.Y
	p.snapX, p.snapY = s.X, s.Y
	p.synced = true
	return p
}
