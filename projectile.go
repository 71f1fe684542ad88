package main

import "math"

const (
	BulletSpeed      = 9.0
	BulletLife       = 60 // ticks
	FireballSpeed    = 5.0
	FireballBounce   = -5.0
	FireballLife     = 180
	MaxFireballs     = 2 // alive per owner
	RocketSpeed      = 6.0
	RocketTurnRate   = 0.08 // radians per tick
	RocketLife       = 150
	GrenadeSpeed     = 6.5
	GrenadeFuse      = 100
	GrenadeRestitute = 0.55
	SlashLife        = 10
	SlashReach       = 34.0
	GrappleSpeed     = 12.0
	GrappleLife      = 40
	GrappleMinRope   = 24.0
	ExplosionRadius  = 72.0
	ExplosionLife    = 18
	EnemyShotSpeed   = 4.0
	EnemyShotLife    = 150
)

// ProjectileKind is the variant tag of a projectile or effect
type ProjectileKind uint8

const (
	ProjBullet ProjectileKind = iota
	ProjFireball
	ProjRocket
	ProjGrenade
	ProjSlash
	ProjGrapple
	ProjExplosion
	ProjEnemyShot
	projKindCount
)

var projKindNames = [projKindCount]string{
	ProjBullet:    "bullet",
	ProjFireball:  "fireball",
	ProjRocket:    "rocket",
	ProjGrenade:   "grenade",
	ProjSlash:     "slash",
	ProjGrapple:   "grapple",
	ProjExplosion: "explosion",
	ProjEnemyShot: "enemyShot",
}

func (k ProjectileKind) String() string {
	if k >= projKindCount {
		return "unknown"
	}
	return projKindNames[k]
}

var projSizes = [projKindCount][2]float64{
	ProjBullet:    {6, 6},
	ProjFireball:  {12, 12},
	ProjRocket:    {14, 8},
	ProjGrenade:   {10, 10},
	ProjSlash:     {SlashReach, 40},
	ProjGrapple:   {6, 6},
	ProjExplosion: {ExplosionRadius * 2, ExplosionRadius * 2},
	ProjEnemyShot: {8, 8},
}

// projectileWorld is what projectile behaviors may see and do during an update
type projectileWorld interface {
	Grid() *TileGrid
	PlayerByID(id uint32) *Player
	Explode(x, y float64, owner uint32)
}

// Projectile is any short-lived attack or effect with its own expiry rule
type Projectile struct {
	Body
	ID       uint32
	Owner    uint32 // player id, or enemy id for enemy shots
	Kind     ProjectileKind
	Life     int // ticks left; fuse for grenades
	Angle    float64
	Attached bool // grapple hook caught a tile
	HitIDs   map[uint32]struct{}
	Dead     bool
}

type projectileBehavior interface {
	update(p *Projectile, w projectileWorld)
	// strike reports whether p defeats e on contact, consuming or detonating
	// p as its kind requires
	strike(p *Projectile, e *Enemy, w projectileWorld) bool
}

var projBehaviors = [projKindCount]projectileBehavior{
	ProjBullet:    straightBehavior{},
	ProjFireball:  fireballBehavior{},
	ProjRocket:    rocketBehavior{},
	ProjGrenade:   grenadeBehavior{},
	ProjSlash:     slashBehavior{},
	ProjGrapple:   grappleBehavior{},
	ProjExplosion: explosionBehavior{},
	ProjEnemyShot: straightBehavior{},
}

var projLife = [projKindCount]int{
	ProjBullet:    BulletLife,
	ProjFireball:  FireballLife,
	ProjRocket:    RocketLife,
	ProjGrenade:   GrenadeFuse,
	ProjSlash:     SlashLife,
	ProjGrapple:   GrappleLife,
	ProjExplosion: ExplosionLife,
	ProjEnemyShot: EnemyShotLife,
}

var projSpeed = [projKindCount]float64{
	ProjBullet:    BulletSpeed,
	ProjFireball:  FireballSpeed,
	ProjRocket:    RocketSpeed,
	ProjGrenade:   GrenadeSpeed,
	ProjGrapple:   GrappleSpeed,
	ProjEnemyShot: EnemyShotSpeed,
}

// NewProjectile launches a projectile centered at (cx, cy) along angle
func NewProjectile(id, owner uint32, kind ProjectileKind, cx, cy, angle float64) *Projectile {
	p := &Projectile{ID: id, Owner: owner, Kind: kind, Angle: angle, Life: projLife[kind]}
	p.W, p.H = projSizes[kind][0], projSizes[kind][1]
	p.X = cx - p.W/2
	p.Y = cy - p.H/2
	speed := projSpeed[kind]
	p.VX = math.Cos(angle) * speed
	p.VY = math.Sin(angle) * speed
	if kind == ProjGrenade {
		p.VY -= 2
	}
	if kind == ProjFireball {
		p.VX = float64(sign(p.VX)) * FireballSpeed
		p.VY = 1
	}
	if kind == ProjSlash || kind == ProjExplosion {
		p.VX, p.VY = 0, 0
		p.HitIDs = make(map[uint32]struct{})
	}
	return p
}

// NewPlayerProjectile spawns the attack for a weapon (or the fire tier's
// fireball) in front of the player, aimed along the pointer angle.
func NewPlayerProjectile(id uint32, pl *Player, kind ProjectileKind, angle float64) *Projectile {
	cx, cy := pl.CenterX(), pl.CenterY()-pl.H/6
	switch kind {
	case ProjSlash:
		p := NewProjectile(id, pl.ID, kind, cx, cy, angle)
		p.followOwner(pl)
		return p
	case ProjFireball:
		angle = 0
		if pl.Facing < 0 {
			angle = math.Pi
		}
	}
	off := pl.W/2 + 4
	return NewProjectile(id, pl.ID, kind, cx+math.Cos(angle)*off, cy+math.Sin(angle)*off, angle)
}

// NewExplosion creates an area effect centered at (cx, cy)
func NewExplosion(id, owner uint32, cx, cy float64) *Projectile {
	return NewProjectile(id, owner, ProjExplosion, cx, cy, 0)
}

func (p *Projectile) behavior() projectileBehavior {
	return projBehaviors[p.Kind]
}

// Update advances the projectile one tick
func (p *Projectile) Update(w projectileWorld) {
	if p.Dead {
		return
	}
	p.behavior().update(p, w)
	g := w.Grid()
	if p.X+p.W < 0 || p.X > g.WidthPx() || p.Y > g.HeightPx() {
		p.Dead = true
	}
}

// Strike resolves contact with an enemy. Enemy shots and grapple hooks
// never strike enemies.
func (p *Projectile) Strike(e *Enemy, w projectileWorld) bool {
	if p.Dead || e.Dead {
		return false
	}
	return p.behavior().strike(p, e, w)
}

// Harmful reports whether the projectile can damage players
func (p *Projectile) Harmful() bool {
	return !p.Dead && p.Kind == ProjEnemyShot
}

// markHit records id and reports whether it was new
func (p *Projectile) markHit(id uint32) bool {
	if _, ok := p.HitIDs[id]; ok {
		return false
	}
	p.HitIDs[id] = struct{}{}
	return true
}

func (p *Projectile) tick() bool {
	p.Life--
	return p.Life <= 0
}

func (p *Projectile) followOwner(pl *Player) {
	p.X = pl.CenterX() - p.W/2 + float64(pl.Facing)*(pl.W/2+p.W/2)
	p.Y = pl.CenterY() - p.H/2
}

func (p *Projectile) detonate(w projectileWorld) {
	if p.Dead {
		return
	}
	p.Dead = true
	w.Explode(p.CenterX(), p.CenterY(), p.Owner)
}

// moveFree moves without gravity; hitting a solid cell ends the flight
func (p *Projectile) moveFree(g *TileGrid) bool {
	p.X += p.VX
	p.Y += p.VY
	return g.IsSolid(CellAt(p.CenterX()), CellAt(p.CenterY()))
}

type straightBehavior struct{}

func (straightBehavior) update(p *Projectile, w projectileWorld) {
	if p.tick() || p.moveFree(w.Grid()) {
		p.Dead = true
	}
}

func (straightBehavior) strike(p *Projectile, _ *Enemy, _ projectileWorld) bool {
	if p.Kind == ProjEnemyShot {
		return false
	}
	p.Dead = true
	return true
}

type fireballBehavior struct{}

func (fireballBehavior) update(p *Projectile, w projectileWorld) {
	if p.tick() {
		p.Dead = true
		return
	}
	p.VY = math.Min(p.VY+Gravity, MaxFall)
	ResolveTiles(&p.Body, w.Grid())
	if p.HitWall {
		p.Dead = true
		return
	}
	if p.OnGround {
		p.VY = FireballBounce
	}
}

func (fireballBehavior) strike(p *Projectile, _ *Enemy, _ projectileWorld) bool {
	p.Dead = true
	return true
}

type rocketBehavior struct{}

// Rockets steer toward the owner's pointer at a bounded turn rate
func (rocketBehavior) update(p *Projectile, w projectileWorld) {
	if p.tick() {
		p.detonate(w)
		return
	}
	if owner := w.PlayerByID(p.Owner); owner != nil && owner.Alive() {
		want := math.Atan2(owner.Input.MouseY-p.CenterY(), owner.Input.MouseX-p.CenterX())
		turn := Clamp(NormalizeAngle(want-p.Angle), -RocketTurnRate, RocketTurnRate)
		p.Angle = NormalizeAngle(p.Angle + turn)
	}
	p.VX = math.Cos(p.Angle) * RocketSpeed
	p.VY = math.Sin(p.Angle) * RocketSpeed
	if p.moveFree(w.Grid()) {
		p.detonate(w)
	}
}

func (rocketBehavior) strike(p *Projectile, _ *Enemy, w projectileWorld) bool {
	p.detonate(w)
	return true
}

type grenadeBehavior struct{}

// Grenades bounce with restitution and always detonate when the fuse runs out
func (grenadeBehavior) update(p *Projectile, w projectileWorld) {
	if p.tick() {
		p.detonate(w)
		return
	}
	p.VY = math.Min(p.VY+Gravity, MaxFall)
	vx, vy := p.VX, p.VY
	ResolveTiles(&p.Body, w.Grid())
	if p.HitWall {
		p.VX = -vx * GrenadeRestitute
	}
	if p.OnGround || p.HitCeiling {
		p.VY = -vy * GrenadeRestitute
		p.VX *= 0.9
		if math.Abs(p.VY) < 1 {
			p.VY = 0
		}
	}
}

func (grenadeBehavior) strike(p *Projectile, _ *Enemy, w projectileWorld) bool {
	p.detonate(w)
	return true
}

type slashBehavior struct{}

func (slashBehavior) update(p *Projectile, w projectileWorld) {
	if p.tick() {
		p.Dead = true
		return
	}
	if owner := w.PlayerByID(p.Owner); owner != nil && owner.Alive() {
		p.followOwner(owner)
	}
}

// A slash defeats each enemy it sweeps at most once
func (slashBehavior) strike(p *Projectile, e *Enemy, _ projectileWorld) bool {
	return p.markHit(e.ID)
}

type grappleBehavior struct{}

func (grappleBehavior) update(p *Projectile, w projectileWorld) {
	owner := w.PlayerByID(p.Owner)
	if owner == nil || !owner.Alive() {
		p.Dead = true
		return
	}
	if !p.Attached {
		if p.tick() {
			p.Dead = true
			return
		}
		if p.moveFree(w.Grid()) {
			p.X -= p.VX
			p.Y -= p.VY
			p.VX, p.VY = 0, 0
			p.Attached = true
			owner.GrappleID = p.ID
			owner.RopeLen = math.Max(GrappleMinRope,
				Distance(owner.CenterX(), owner.CenterY(), p.CenterX(), p.CenterY()))
		}
		return
	}
	if owner.GrappleID != p.ID {
		p.Dead = true
		return
	}
	constrainRope(owner, p.CenterX(), p.CenterY())
}

func (grappleBehavior) strike(*Projectile, *Enemy, projectileWorld) bool { return false }

// constrainRope keeps the player within RopeLen of the anchor and removes the
// outward radial velocity so the player swings
func constrainRope(pl *Player, ax, ay float64) {
	dx := pl.CenterX() - ax
	dy := pl.CenterY() - ay
	d := math.Hypot(dx, dy)
	if d <= pl.RopeLen || d == 0 {
		return
	}
	nx, ny := dx/d, dy/d
	pl.X -= nx * (d - pl.RopeLen)
	pl.Y -= ny * (d - pl.RopeLen)
	if radial := pl.VX*nx + pl.VY*ny; radial > 0 {
		pl.VX -= radial * nx
		pl.VY -= radial * ny
	}
}

type explosionBehavior struct{}

func (explosionBehavior) update(p *Projectile, _ projectileWorld) {
	if p.tick() {
		p.Dead = true
	}
}

// Explosions damage every enemy in the radius exactly once
func (explosionBehavior) strike(p *Projectile, e *Enemy, _ projectileWorld) bool {
	if !CheckCircleBox(p.CenterX(), p.CenterY(), ExplosionRadius, e.Box()) {
		return false
	}
	return p.markHit(e.ID)
}

// ToSpawn describes the projectile for a PROJ_SPAWN event
func (p *Projectile) ToSpawn() ProjSpawn {
	return ProjSpawn{
		ID:    p.ID,
		Owner: p.Owner,
		Kind:  p.Kind,
		X:     round1(p.X),
		Y:     round1(p.Y),
		VX:    round1(p.VX),
		VY:    round1(p.VY),
		Angle: p.Angle,
	}
}

// projectileFromSpawn creates the mirror of a remote participant's projectile
func projectileFromSpawn(s ProjSpawn) (*Projectile, bool) {
	if s.Kind >= projKindCount || s.Kind == ProjExplosion {
		return nil, false
	}
	p := NewProjectile(s.ID, s.Owner, s.Kind, 0, 0, s.Angle)
	p.X, p.Y = s.X, s.Y
	p.VX, p.VY = s.VX, s.VY
	return p, true
}
