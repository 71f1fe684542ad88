package main

import "math"

const (
	EnemyMaxFall       = 10.0
	EnemyDeathTicks    = 30
	ActivationRange    = 640.0
	ShellSpeed         = 7.0
	ShellReviveTicks   = 300
	TurretRange        = 400.0
	TurretFireInterval = 120
	FlyerAmplitude     = 48.0
	FlyerPeriod        = 120
)

// EnemyKind is the variant tag of an enemy
type EnemyKind uint8

const (
	EnemyWalker EnemyKind = iota // weak ground patroller
	EnemyShell                   // patroller that retreats into a kickable shell
	EnemyTurret                  // stationary ranged shooter
	EnemyBrute                   // two-stage patroller
	EnemyFlyer                   // winged patroller, grounded after one stomp
	enemyKindCount
)

var enemyKindNames = [enemyKindCount]string{
	EnemyWalker: "walker",
	EnemyShell:  "shell",
	EnemyTurret: "turret",
	EnemyBrute:  "brute",
	EnemyFlyer:  "flyer",
}

func (k EnemyKind) String() string {
	if k >= enemyKindCount {
		return "unknown"
	}
	return enemyKindNames[k]
}

// ParseEnemyKind maps a wire tag back to a kind
func ParseEnemyKind(s string) (EnemyKind, bool) {
	for k, n := range enemyKindNames {
		if n == s {
			return EnemyKind(k), true
		}
	}
	return 0, false
}

// enemyWorld is what enemy behaviors may see and do during an update
type enemyWorld interface {
	Grid() *TileGrid
	NearestPlayer(x, y float64) *Player
	SpawnEnemyShot(e *Enemy, angle float64)
}

// Enemy is a hostile entity. Per-kind rules live in enemyBehaviors.
type Enemy struct {
	Body
	ID          uint32
	Kind        EnemyKind
	Dir         int
	Stage       int // brute: 1 = wounded, flyer: 1 = wingless
	Shelled     bool
	ShellMoving bool
	ShellTimer  int
	KickedBy    uint32
	FireCD      int
	Activated   bool
	Dead        bool
	Flipped     bool // defeated by a weapon, falls off screen
	DeathTimer  int
	Remove      bool
	baseY       float64
	phase       int
}

type enemyBehavior interface {
	size(e *Enemy) (w, h float64)
	update(e *Enemy, w enemyWorld)
	stomp(e *Enemy, by *Player) int
	kill(e *Enemy) int
	harmless(e *Enemy) bool
	sprite(e *Enemy) string
}

var enemyBehaviors = [enemyKindCount]enemyBehavior{
	EnemyWalker: walkerBehavior{},
	EnemyShell:  shellBehavior{},
	EnemyTurret: turretBehavior{},
	EnemyBrute:  bruteBehavior{},
	EnemyFlyer:  flyerBehavior{},
}

// NewEnemy creates an enemy standing on the bottom of cell (cx, cy)
func NewEnemy(id uint32, kind EnemyKind, cx, cy int) *Enemy {
	e := &Enemy{ID: id, Kind: kind, Dir: -1}
	e.W, e.H = e.behavior().size(e)
	e.X = float64(cx)*TileSize + (TileSize-e.W)/2
	e.Y = float64(cy+1)*TileSize - e.H
	e.baseY = e.Y
	return e
}

func (e *Enemy) behavior() enemyBehavior {
	return enemyBehaviors[e.Kind]
}

// Update advances the enemy one tick
func (e *Enemy) Update(w enemyWorld) {
	if e.Dead {
		if e.Flipped {
			e.VY = math.Min(e.VY+Gravity, EnemyMaxFall)
			e.X += e.VX
			e.Y += e.VY
		}
		e.DeathTimer--
		if e.DeathTimer <= 0 {
			e.Remove = true
		}
		return
	}
	e.behavior().update(e, w)
	if e.Y > w.Grid().HeightPx() {
		e.Dead = true
		e.Remove = true
	}
}

// Stomp resolves a player landing on the enemy and returns points awarded
func (e *Enemy) Stomp(by *Player) int {
	if e.Dead {
		return 0
	}
	return e.behavior().stomp(e, by)
}

// Defeat kills the enemy outright (weapon, shell, bump) and returns points
func (e *Enemy) Defeat() int {
	if e.Dead {
		return 0
	}
	pts := e.behavior().kill(e)
	e.die(true)
	return pts
}

// Harmless reports a safe resting state that does not hurt on contact
func (e *Enemy) Harmless() bool {
	return e.Dead || e.behavior().harmless(e)
}

// Sprite names the draw primitive for the rendering surface
func (e *Enemy) Sprite() string {
	return e.behavior().sprite(e)
}

// Kick sends a resting shell sliding away from the kicker
func (e *Enemy) Kick(by *Player) {
	e.ShellMoving = true
	e.ShellTimer = 0
	e.KickedBy = by.ID
	if by.CenterX() < e.CenterX() {
		e.Dir = 1
	} else {
		e.Dir = -1
	}
}

func (e *Enemy) die(flip bool) {
	e.Dead = true
	e.ShellMoving = false
	e.DeathTimer = EnemyDeathTicks
	if flip {
		e.Flipped = true
		e.VX = 0
		e.VY = -6
		e.DeathTimer = EnemyDeathTicks * 3
	}
}

// resize changes the box keeping the feet in place
func (e *Enemy) resize() {
	w, h := e.behavior().size(e)
	bottom := e.Y + e.H
	cx := e.X + e.W/2
	e.W, e.H = w, h
	e.X = cx - w/2
	e.Y = bottom - h
}

// patrol walks in Dir, reversing at walls and optionally at ledges
func patrol(e *Enemy, g *TileGrid, speed float64, turnAtLedge bool) {
	e.VX = speed * float64(e.Dir)
	e.VY = math.Min(e.VY+Gravity, EnemyMaxFall)
	ResolveTiles(&e.Body, g)
	if e.HitWall {
		e.Dir = -e.Dir
		return
	}
	if turnAtLedge && e.OnGround {
		ahead := e.X + e.W + 1
		if e.Dir < 0 {
			ahead = e.X - 1
		}
		if !g.IsSolid(CellAt(ahead), CellAt(e.Y+e.H+1)) {
			e.Dir = -e.Dir
		}
	}
}

type walkerBehavior struct{}

func (walkerBehavior) size(*Enemy) (float64, float64) { return 28, 28 }
func (walkerBehavior) update(e *Enemy, w enemyWorld)  { patrol(e, w.Grid(), 1.0, false) }
func (walkerBehavior) stomp(e *Enemy, _ *Player) int {
	e.die(false)
	return 100
}
func (walkerBehavior) kill(*Enemy) int      { return 100 }
func (walkerBehavior) harmless(*Enemy) bool { return false }
func (walkerBehavior) sprite(e *Enemy) string {
	if e.Dead && !e.Flipped {
		return "walker_flat"
	}
	return "walker"
}

type shellBehavior struct{}

func (shellBehavior) size(e *Enemy) (float64, float64) {
	if e.Shelled {
		return 28, 28
	}
	return 28, 40
}

func (shellBehavior) update(e *Enemy, w enemyWorld) {
	switch {
	case !e.Shelled:
		patrol(e, w.Grid(), 0.9, true)
	case e.ShellMoving:
		patrol(e, w.Grid(), ShellSpeed, false)
	default:
		e.VX = 0
		e.VY = math.Min(e.VY+Gravity, EnemyMaxFall)
		ResolveTiles(&e.Body, w.Grid())
		e.ShellTimer++
		if e.ShellTimer >= ShellReviveTicks {
			e.Shelled = false
			e.ShellTimer = 0
			e.resize()
		}
	}
}

func (shellBehavior) stomp(e *Enemy, by *Player) int {
	switch {
	case !e.Shelled:
		e.Shelled = true
		e.ShellMoving = false
		e.ShellTimer = 0
		e.VX = 0
		e.resize()
	case e.ShellMoving:
		e.ShellMoving = false
		e.ShellTimer = 0
	default:
		e.Kick(by)
	}
	return 100
}

func (shellBehavior) kill(*Enemy) int { return 200 }
func (shellBehavior) harmless(e *Enemy) bool {
	return e.Shelled && !e.ShellMoving
}
func (shellBehavior) sprite(e *Enemy) string {
	if e.Shelled {
		return "shell"
	}
	return "shell_walker"
}

type turretBehavior struct{}

func (turretBehavior) size(*Enemy) (float64, float64) { return 32, 32 }

func (turretBehavior) update(e *Enemy, w enemyWorld) {
	e.VX = 0
	e.VY = math.Min(e.VY+Gravity, EnemyMaxFall)
	ResolveTiles(&e.Body, w.Grid())
	if e.FireCD > 0 {
		e.FireCD--
		return
	}
	target := w.NearestPlayer(e.CenterX(), e.CenterY())
	if target == nil {
		return
	}
	dx := target.CenterX() - e.CenterX()
	dy := target.CenterY() - e.CenterY()
	if dx*dx+dy*dy > TurretRange*TurretRange {
		return
	}
	e.Dir = sign(dx)
	w.SpawnEnemyShot(e, math.Atan2(dy, dx))
	e.FireCD = TurretFireInterval
}

func (turretBehavior) stomp(e *Enemy, _ *Player) int {
	e.die(false)
	return 200
}
func (turretBehavior) kill(*Enemy) int      { return 200 }
func (turretBehavior) harmless(*Enemy) bool { return false }
func (turretBehavior) sprite(*Enemy) string { return "turret" }

type bruteBehavior struct{}

func (bruteBehavior) size(e *Enemy) (float64, float64) {
	if e.Stage > 0 {
		return 28, 28
	}
	return 36, 44
}

func (bruteBehavior) update(e *Enemy, w enemyWorld) {
	speed := 1.4
	if e.Stage > 0 {
		speed = 0.7
	}
	patrol(e, w.Grid(), speed, true)
}

// A first stomp wounds for partial points; the second defeats for full points
func (bruteBehavior) stomp(e *Enemy, _ *Player) int {
	if e.Stage == 0 {
		e.Stage = 1
		e.resize()
		return 100
	}
	e.die(false)
	return 500
}

func (bruteBehavior) kill(*Enemy) int      { return 500 }
func (bruteBehavior) harmless(*Enemy) bool { return false }
func (bruteBehavior) sprite(e *Enemy) string {
	if e.Stage > 0 {
		return "brute_wounded"
	}
	return "brute"
}

type flyerBehavior struct{}

func (flyerBehavior) size(*Enemy) (float64, float64) { return 28, 36 }

func (flyerBehavior) update(e *Enemy, w enemyWorld) {
	if e.Stage > 0 {
		patrol(e, w.Grid(), 1.0, false)
		return
	}
	e.phase++
	targetY := e.baseY + math.Sin(float64(e.phase)*2*math.Pi/FlyerPeriod)*FlyerAmplitude
	e.VX = float64(e.Dir)
	e.VY = targetY - e.Y
	ResolveTiles(&e.Body, w.Grid())
	if e.HitWall {
		e.Dir = -e.Dir
	}
}

func (flyerBehavior) stomp(e *Enemy, _ *Player) int {
	if e.Stage == 0 {
		e.Stage = 1
		e.VY = 0
		return 200
	}
	e.die(false)
	return 200
}

func (flyerBehavior) kill(*Enemy) int      { return 200 }
func (flyerBehavior) harmless(*Enemy) bool { return false }
func (flyerBehavior) sprite(e *Enemy) string {
	if e.Stage > 0 {
		return "flyer_grounded"
	}
	return "flyer"
}

// ToSnapshot converts to protocol state
func (e *Enemy) ToSnapshot() EnemySnapshot {
	return EnemySnapshot{
		ID:          e.ID,
		Kind:        e.Kind.String(),
		X:           math.Round(e.X),
		Y:           math.Round(e.Y),
		VX:          round1(e.VX),
		Dead:        e.Dead,
		Remove:      e.Remove,
		Shelled:     e.Shelled,
		ShellMoving: e.ShellMoving,
		H:           e.H,
		Stage:       e.Stage,
	}
}

// ApplySnapshot overwrites a mirror directly; mirrors are never predicted
func (e *Enemy) ApplySnapshot(s EnemySnapshot) {
	e.Shelled = s.Shelled
	e.ShellMoving = s.ShellMoving
	e.Stage = s.Stage
	e.W, _ = e.behavior().size(e)
	e.H = s.H
	e.X, e.Y = s.X, s.Y
	e.VX = s.VX
	if s.VX != 0 {
		e.Dir = sign(s.VX)
	}
	if s.Dead && !e.Dead {
		e.DeathTimer = EnemyDeathTicks
	}
	e.Dead = s.Dead
	e.Remove = s.Remove
}

// enemyFromSnapshot creates a mirror for an id first seen in a snapshot
func enemyFromSnapshot(s EnemySnapshot) (*Enemy, bool) {
	kind, ok := ParseEnemyKind(s.Kind)
	if !ok {
		return nil, false
	}
	e := &Enemy{ID: s.ID, Kind: kind, Dir: -1, Activated: true}
	e.ApplySnapshot(s)
	e.baseY = e.Y
	return e, true
}
