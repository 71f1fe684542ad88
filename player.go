package main

import "math"

const (
	Gravity         = 0.55
	JumpHoldGravity = 0.3 // while rising with jump held
	MaxFall         = 11.0
	WalkSpeed       = 3.2
	RunSpeed        = 5.2
	WalkAccel       = 0.22
	RunAccel        = 0.32
	GroundFriction  = 0.8
	AirDrag         = 0.98
	JumpVel         = -10.5
	RunJumpVel      = -11.5
	StompBounce     = -8.0
	StompBounceHeld = -11.0

	SmallW = 24.0
	SmallH = 30.0
	BigW   = 26.0
	BigH   = 56.0

	StartLives     = 3
	HurtInvuln     = 120 // ticks
	StompGraceTime = 10
	DeathAnimTicks = 90
	CoinScore      = 200
	CoinsPerLife   = 100
	PowerUpScore   = 1000
)

// PowerTier is the player's growth stage
type PowerTier uint8

const (
	PowerSmall PowerTier = iota
	PowerBig
	PowerFire
)

// MoveState is the animation/movement tag carried in snapshots
type MoveState uint8

const (
	MoveIdle MoveState = iota
	MoveWalk
	MoveRun
	MoveJump
	MoveFall
	MoveSwing
	MoveDead
)

// Player is one participant's avatar
type Player struct {
	Body
	ID     uint32
	Name   string
	Active bool // participant connected and simulated
	Facing int
	State  MoveState

	Power      PowerTier
	Lives      int
	Coins      int
	Score      int
	Invuln     int
	StompGrace int
	Dead       bool
	DeathTimer int

	Inventory Inventory
	GrappleID uint32 // attached grapple line, 0 when none
	RopeLen   float64
	FireCD    int

	Input    InputKeys
	prevJump bool
	prevFire bool
	stroke   []Point // pencil stroke being drawn

	corrX, corrY float64 // pending reconciliation offset
}

// NewPlayer creates a small player at the given position
func NewPlayer(id uint32, name string, x, y float64) *Player {
	p := &Player{
		ID:        id,
		Name:      name,
		Active:    true,
		Facing:    1,
		Lives:     StartLives,
		Inventory: NewInventory(),
	}
	p.W, p.H = SmallW, SmallH
	p.Place(x, y)
	return p
}

// Place puts the player's feet at (x, bottomY) and clears motion
func (p *Player) Place(x, bottomY float64) {
	p.X = x
	p.Y = bottomY - p.H
	p.VX, p.VY = 0, 0
	p.corrX, p.corrY = 0, 0
}

// Alive reports whether the player takes part in collisions
func (p *Player) Alive() bool {
	return p.Active && !p.Dead
}

// Update advances the player one tick and returns cells struck from below
func (p *Player) Update(in InputKeys, grid *TileGrid) []CellHit {
	p.Input = in
	if p.Dead {
		if p.DeathTimer > 0 {
			p.DeathTimer--
		}
		p.VY = math.Min(p.VY+Gravity, MaxFall)
		p.Y += p.VY
		p.State = MoveDead
		return nil
	}

	p.applyCorrection()
	if p.Invuln > 0 {
		p.Invuln--
	}
	if p.StompGrace > 0 {
		p.StompGrace--
	}
	if p.FireCD > 0 {
		p.FireCD--
	}

	maxSpeed, accel := WalkSpeed, WalkAccel
	if in.Run {
		maxSpeed, accel = RunSpeed, RunAccel
	}
	switch {
	case in.Left && !in.Right:
		p.VX = Approach(p.VX, -maxSpeed, accel)
		p.Facing = -1
	case in.Right && !in.Left:
		p.VX = Approach(p.VX, maxSpeed, accel)
		p.Facing = 1
	case p.OnGround:
		p.VX *= GroundFriction
		if math.Abs(p.VX) < 0.05 {
			p.VX = 0
		}
	default:
		p.VX *= AirDrag
	}

	if in.Jump && !p.prevJump && (p.OnGround || p.GrappleID != 0) {
		p.VY = JumpVel
		if math.Abs(p.VX) > WalkSpeed {
			p.VY = RunJumpVel
		}
		p.OnGround = false
		p.GrappleID = 0
	}
	p.prevJump = in.Jump

	g := Gravity
	if in.Jump && p.VY < 0 {
		g = JumpHoldGravity
	}
	p.VY = math.Min(p.VY+g, MaxFall)

	hits := ResolveTiles(&p.Body, grid)
	p.State = p.moveState()
	return hits
}

func (p *Player) moveState() MoveState {
	switch {
	case p.Dead:
		return MoveDead
	case p.GrappleID != 0 && !p.OnGround:
		return MoveSwing
	case !p.OnGround && p.VY < 0:
		return MoveJump
	case !p.OnGround:
		return MoveFall
	case math.Abs(p.VX) > WalkSpeed:
		return MoveRun
	case p.VX != 0:
		return MoveWalk
	}
	return MoveIdle
}

// applyCorrection blends a fraction of the pending host correction
func (p *Player) applyCorrection() {
	if p.corrX == 0 && p.corrY == 0 {
		return
	}
	sx := p.corrX * BlendFactor
	sy := p.corrY * BlendFactor
	if math.Abs(p.corrX) < 0.5 {
		sx = p.corrX
	}
	if math.Abs(p.corrY) < 0.5 {
		sy = p.corrY
	}
	p.X += sx
	p.Y += sy
	p.corrX -= sx
	p.corrY -= sy
}

// Bounce launches the player upward after a stomp
func (p *Player) Bounce() {
	p.VY = StompBounce
	if p.Input.Jump {
		p.VY = StompBounceHeld
	}
	p.StompGrace = StompGraceTime
}

// Hurt applies contact damage. Big and fire tiers shrink with an invulnerability
// window, small players die. Returns true when the player died.
func (p *Player) Hurt() bool {
	if p.Dead || p.Invuln > 0 {
		return false
	}
	if p.Power > PowerSmall {
		p.SetPower(PowerSmall)
		p.Invuln = HurtInvuln
		return false
	}
	p.Die()
	return true
}

// Die starts the death animation and spends a life
func (p *Player) Die() {
	if p.Dead {
		return
	}
	p.Dead = true
	p.DeathTimer = DeathAnimTicks
	p.Lives--
	if p.Lives < 0 {
		p.Lives = 0
	}
	p.VX = 0
	p.VY = -10
	p.GrappleID = 0
	p.stroke = nil
	p.State = MoveDead
}

// DeathDone reports a finished death animation
func (p *Player) DeathDone() bool {
	return p.Dead && p.DeathTimer <= 0
}

// Respawn brings a dead player back as small with a short invulnerability
func (p *Player) Respawn(x, bottomY float64) {
	p.Dead = false
	p.DeathTimer = 0
	p.SetPower(PowerSmall)
	p.Place(x, bottomY)
	p.Invuln = HurtInvuln
	p.State = MoveIdle
}

// SetPower changes tier and resizes the body keeping the feet in place
func (p *Player) SetPower(t PowerTier) {
	p.Power = t
	bottom := p.Y + p.H
	cx := p.X + p.W/2
	if t == PowerSmall {
		p.W, p.H = SmallW, SmallH
	} else {
		p.W, p.H = BigW, BigH
	}
	p.X = cx - p.W/2
	p.Y = bottom - p.H
}

// CollectCoin adds a coin; every CoinsPerLife coins grant a life.
// Returns true when a life was granted.
func (p *Player) CollectCoin() bool {
	p.Coins++
	p.Score += CoinScore
	if p.Coins%CoinsPerLife == 0 {
		p.Lives++
		return true
	}
	return false
}

// ApplyPowerUp applies a collected power-up
func (p *Player) ApplyPowerUp(kind PickupKind) {
	switch kind {
	case PickupMushroom:
		if p.Power == PowerSmall {
			p.SetPower(PowerBig)
		}
	case PickupFlower:
		p.SetPower(PowerFire)
	case PickupOneUp:
		p.Lives++
		return
	}
	p.Score += PowerUpScore
}

// ResetProfile restores a fresh-session profile
func (p *Player) ResetProfile() {
	p.Lives = StartLives
	p.Coins = 0
	p.Score = 0
	p.Inventory = NewInventory()
	p.Dead = false
	p.DeathTimer = 0
	p.Invuln = 0
	p.SetPower(PowerSmall)
}

// ToSnapshot converts to protocol state
func (p *Player) ToSnapshot() PlayerSnapshot {
	inv := make([]Slot, len(p.Inventory.Slots))
	copy(inv, p.Inventory.Slots)
	return PlayerSnapshot{
		ID:        p.ID,
		X:         math.Round(p.X),
		Y:         math.Round(p.Y),
		VX:        round1(p.VX),
		VY:        round1(p.VY),
		State:     p.State,
		Power:     p.Power,
		Facing:    p.Facing,
		OnGround:  p.OnGround,
		Dead:      p.Dead,
		Invuln:    p.Invuln,
		Coins:     p.Coins,
		Lives:     p.Lives,
		Score:     p.Score,
		Slot:      p.Inventory.Active,
		Inventory: inv,
		Active:    p.Active,
	}
}

// ApplySnapshot overwrites the player from host state. When blend is set and
// the positional error is below SnapThreshold the error is folded in over
// several ticks instead of teleporting.
func (p *Player) ApplySnapshot(s PlayerSnapshot, blend bool) {
	if s.Power != p.Power {
		p.SetPower(s.Power)
	}
	dx := s.X - p.X
	dy := s.Y - p.Y
	if !blend || s.Dead != p.Dead || math.Hypot(dx, dy) > SnapThreshold {
		p.X, p.Y = s.X, s.Y
		p.VX, p.VY = s.VX, s.VY
		p.corrX, p.corrY = 0, 0
	} else {
		p.corrX, p.corrY = dx, dy
	}
	if s.Dead && !p.Dead {
		p.DeathTimer = DeathAnimTicks
		p.GrappleID = 0
	}
	p.Dead = s.Dead
	p.State = s.State
	p.Facing = s.Facing
	p.OnGround = s.OnGround
	p.Invuln = s.Invuln
	p.Coins = s.Coins
	p.Lives = s.Lives
	p.Score = s.Score
	p.Active = s.Active
	setInventory(p, s.Inventory, s.Slot)
}
