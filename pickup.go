package main

import "math"

const (
	CoinSize       = 20.0
	PowerUpSize    = 28.0
	CrateSize      = 28.0
	PowerUpSpeed   = 1.6
	EmergeTicks    = 32
	PickupMaxFall  = 8.0
	CoinPopTicks   = 30
	CoinPopImpulse = -7.0
)

// PickupKind identifies a collectible
type PickupKind uint8

const (
	PickupCoin PickupKind = iota
	PickupMushroom
	PickupFlower
	PickupOneUp
	PickupCrate
)

var pickupNames = map[PickupKind]string{
	PickupCoin:     "coin",
	PickupMushroom: "mushroom",
	PickupFlower:   "flower",
	PickupOneUp:    "oneup",
	PickupCrate:    "crate",
}

func (k PickupKind) String() string {
	return pickupNames[k]
}

// ParsePickupKind maps a wire name back to a kind
func ParsePickupKind(s string) (PickupKind, bool) {
	for k, n := range pickupNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// Pickup is a collectible. Coins are static; power-ups and crates fall.
type Pickup struct {
	Body
	ID       uint32
	Kind     PickupKind
	Weapon   WeaponKind // crates only
	Dir      int
	Emerging int // ticks left rising out of a block
	Dead     bool
}

// NewCoin places a static level coin centered in a cell
func NewCoin(id uint32, cx, cy int) *Pickup {
	c := &Pickup{ID: id, Kind: PickupCoin}
	c.W, c.H = CoinSize, CoinSize
	c.X = float64(cx)*TileSize + (TileSize-CoinSize)/2
	c.Y = float64(cy)*TileSize + (TileSize-CoinSize)/2
	return c
}

// NewCrate places a weapon crate resting in a cell
func NewCrate(id uint32, cx, cy int, weapon WeaponKind) *Pickup {
	c := &Pickup{ID: id, Kind: PickupCrate, Weapon: weapon}
	c.W, c.H = CrateSize, CrateSize
	c.X = float64(cx)*TileSize + (TileSize-CrateSize)/2
	c.Y = float64(cy+1)*TileSize - CrateSize
	return c
}

// NewEmergingPowerUp spawns a power-up inside the block at (cx, cy); it rises
// out over EmergeTicks before walking.
func NewEmergingPowerUp(id uint32, kind PickupKind, cx, cy int) *Pickup {
	p := &Pickup{ID: id, Kind: kind, Dir: 1, Emerging: EmergeTicks}
	p.W, p.H = PowerUpSize, PowerUpSize
	p.X = float64(cx)*TileSize + (TileSize-PowerUpSize)/2
	p.Y = float64(cy+1)*TileSize - PowerUpSize
	return p
}

// Collectible reports whether a player can take it this tick
func (p *Pickup) Collectible() bool {
	return !p.Dead && p.Emerging == 0
}

// Update moves the pickup one tick. Coins never move; flowers stay put once out.
func (p *Pickup) Update(grid *TileGrid) {
	if p.Dead || p.Kind == PickupCoin {
		return
	}
	if p.Emerging > 0 {
		p.Y -= PowerUpSize / EmergeTicks
		p.Emerging--
		return
	}
	switch p.Kind {
	case PickupMushroom, PickupOneUp:
		p.VX = PowerUpSpeed * float64(p.Dir)
	default:
		p.VX = 0
	}
	p.VY = math.Min(p.VY+Gravity, PickupMaxFall)
	ResolveTiles(&p.Body, grid)
	if p.HitWall {
		p.Dir = -p.Dir
	}
	if p.Y > grid.HeightPx() {
		p.Dead = true
	}
}

// ToSnapshot converts a power-up or crate to protocol state
func (p *Pickup) ToSnapshot() PowerUpSnapshot {
	return PowerUpSnapshot{
		ID:     p.ID,
		X:      math.Round(p.X),
		Y:      math.Round(p.Y),
		Dead:   p.Dead,
		Type:   p.Kind.String(),
		Weapon: p.Weapon,
	}
}

// pickupFromSnapshot creates a mirror for an id first seen in a snapshot
func pickupFromSnapshot(s PowerUpSnapshot) (*Pickup, bool) {
	kind, ok := ParsePickupKind(s.Type)
	if !ok || kind == PickupCoin {
		return nil, false
	}
	p := &Pickup{ID: s.ID, Kind: kind, Weapon: s.Weapon, Dir: 1}
	p.W, p.H = PowerUpSize, PowerUpSize
	if kind == PickupCrate {
		p.W, p.H = CrateSize, CrateSize
	}
	p.X, p.Y, p.Dead = s.X, s.Y, s.Dead
	return p, true
}
