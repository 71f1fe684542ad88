package main

import (
	log "github.com/sirupsen/logrus"
)

const (
	SnapshotEvery = 3    // ticks between host snapshots
	SnapThreshold = 96.0 // positional error that forces a hard snap
	BlendFactor   = 0.2  // share of the remaining error folded in per tick
)

// Sender is the outbound side of the transport. Sends are best effort.
type Sender interface {
	Send(data []byte) error
}

// send encodes and relays a game message; failures are logged and dropped
func (g *Game) send(t string, payload any) {
	if g.sender == nil || g.role == RoleSolo {
		return
	}
	data, err := Encode(t, payload)
	if err != nil {
		log.WithError(err).WithField("type", t).Warn("encode failed")
		return
	}
	if err := g.sender.Send(data); err != nil {
		log.WithError(err).WithField("type", t).Debug("send dropped")
	}
}

// sendEvent stamps the next sequence number and relays the event
func (g *Game) sendEvent(m EventMsg) {
	g.seq++
	m.Seq = g.seq
	g.send(MsgEvent, m)
}

func (g *Game) broadcastState() {
	g.send(MsgState, g.buildState())
}

// buildState captures every replicated entity
func (g *Game) buildState() StateMsg {
	st := StateMsg{Frame: g.frame, Phase: g.match.Phase}
	if g.level == nil {
		return st
	}
	st.Level = g.level.Index
	st.Players = make([]PlayerSnapshot, 0, 2)
	for _, id := range [...]uint32{HostPlayerID, GuestPlayerID} {
		st.Players = append(st.Players, g.players[id].ToSnapshot())
	}
	st.Enemies = make([]EnemySnapshot, 0, len(g.enemies))
	for _, e := range g.enemies {
		st.Enemies = append(st.Enemies, e.ToSnapshot())
	}
	st.Coins = make([]CoinSnapshot, 0, len(g.coins))
	for _, c := range g.coins {
		st.Coins = append(st.Coins, CoinSnapshot{ID: c.ID, Dead: c.Dead})
	}
	st.PowerUps = make([]PowerUpSnapshot, 0, len(g.powerUps))
	for _, p := range g.powerUps {
		st.PowerUps = append(st.PowerUps, p.ToSnapshot())
	}
	st.Platforms = make([]PlatformSnapshot, 0, len(g.platforms))
	for _, p := range g.platforms {
		st.Platforms = append(st.Platforms, p.ToSnapshot())
	}
	st.Tiles = append([]TileChange(nil), g.level.Grid.Changes()...)
	return st
}

// drainInbox applies everything received since the last tick
func (g *Game) drainInbox() {
	st := g.inbox.Take()
	if st.Restart != nil {
		g.applyRestart(*st.Restart)
	}
	for _, ev := range st.Events {
		g.applyEvent(ev)
	}
	if st.State != nil {
		g.applyState(*st.State)
	}
	if st.Input != nil {
		g.remoteInput = st.Input.Keys
	}
}

func (g *Game) applyRestart(r RestartMsg) {
	if g.role != RoleClient {
		return
	}
	g.seen.Reset()
	if err := g.loadLevel(r.Level, r.Reset); err != nil {
		log.WithError(err).Error("restart failed")
	}
}

// applyState reconciles the client with a host snapshot. Mirrors are
// overwritten, created or removed; players are corrected with blending.
func (g *Game) applyState(s StateMsg) {
	if g.role != RoleClient || g.level == nil || s.Level != g.level.Index {
		return
	}
	if g.match.Phase == PhasePlaying && (s.Phase == PhaseWin || s.Phase == PhaseGameOver) {
		g.match.Phase = s.Phase
	}

	for _, ps := range s.Players {
		p := g.players[ps.ID]
		if p == nil {
			continue
		}
		// own ammo is spent locally; only CRATE_PICKUP replaces it
		inv := p.Inventory
		p.ApplySnapshot(ps, true)
		if ps.ID == g.self {
			p.Inventory = inv
		}
	}
	g.players[g.self].Active = true

	g.enemies = reconcile(g.enemies, s.Enemies,
		func(e *Enemy) uint32 { return e.ID },
		func(s EnemySnapshot) uint32 { return s.ID },
		func(e *Enemy, s EnemySnapshot) { e.ApplySnapshot(s) },
		enemyFromSnapshot)

	g.coins = reconcile(g.coins, s.Coins,
		func(c *Pickup) uint32 { return c.ID },
		func(s CoinSnapshot) uint32 { return s.ID },
		func(c *Pickup, s CoinSnapshot) { c.Dead = s.Dead },
		func(CoinSnapshot) (*Pickup, bool) { return nil, false })

	g.powerUps = reconcile(g.powerUps, s.PowerUps,
		func(p *Pickup) uint32 { return p.ID },
		func(s PowerUpSnapshot) uint32 { return s.ID },
		func(p *Pickup, s PowerUpSnapshot) {
			p.X, p.Y, p.Dead = s.X, s.Y, s.Dead
			p.Emerging = 0
		},
		pickupFromSnapshot)

	g.platforms = reconcile(g.platforms, s.Platforms,
		func(p *Platform) uint32 { return p.ID },
		func(s PlatformSnapshot) uint32 { return s.ID },
		func(p *Platform, s PlatformSnapshot) { p.ApplySnapshot(s) },
		func(s PlatformSnapshot) (*Platform, bool) { return platformFromSnapshot(s), true })

	for _, c := range s.Tiles {
		g.level.Grid.Apply(c)
	}
}

// reconcile brings a mirror list in line with the host's id set: absent ids
// are removed, known ids overwritten and unknown ids created.
func reconcile[E any, S any](local []E, remote []S, localID func(E) uint32, remoteID func(S) uint32,
	apply func(E, S), create func(S) (E, bool)) []E {
	byID := make(map[uint32]E, len(local))
	for _, e := range local {
		byID[localID(e)] = e
	}
	out := make([]E, 0, len(remote))
	for _, s := range remote {
		if e, ok := byID[remoteID(s)]; ok {
			apply(e, s)
			out = append(out, e)
			continue
		}
		if e, ok := create(s); ok {
			out = append(out, e)
		}
	}
	return out
}

// hostOnly lists events only the authoritative side may originate
var hostOnly = map[string]bool{
	EvCoin:         true,
	EvPowerUp:      true,
	EvStomp:        true,
	EvHurt:         true,
	EvBlockHit:     true,
	EvBrickBreak:   true,
	EvPowerUpSpawn: true,
	EvWin:          true,
	EvGameOver:     true,
	EvCratePickup:  true,
}

// applyEvent applies a peer event once. Events carry resulting values, so a
// duplicate that slips past the sequence check is still harmless.
func (g *Game) applyEvent(m EventMsg) {
	if !g.seen.Add(m.Seq) {
		return
	}
	if hostOnly[m.Event] && g.role != RoleClient {
		return
	}
	if g.level == nil && m.Event != EvChat {
		return
	}
	p := g.players[m.Player]

	switch m.Event {
	case EvCoin:
		x := float64(m.CX)*TileSize + TileSize/2
		y := float64(m.CY) * TileSize
		if c := findPickup(g.coins, m.Target); c != nil {
			x, y = c.CenterX(), c.Y
			c.Dead = true
		}
		if p != nil {
			p.Score, p.Coins, p.Lives = m.Score, m.Coins, m.Lives
		}
		if m.Player != g.self {
			g.fx.AddScoreText(x, y, m.Points)
		}
	case EvPowerUp:
		if pu := findPickup(g.powerUps, m.Target); pu != nil {
			pu.Dead = true
			g.fx.AddScoreText(pu.CenterX(), pu.Y, m.Points)
		}
		if p != nil {
			if p.Power != m.Power {
				p.SetPower(m.Power)
			}
			p.Score, p.Lives = m.Score, m.Lives
		}
	case EvStomp:
		if p != nil {
			p.Score = m.Score
		}
		if e := findEnemy(g.enemies, m.Target); e != nil {
			g.fx.AddScoreText(e.CenterX(), e.Y, m.Points)
		}
	case EvHurt:
		if p == nil {
			return
		}
		if p.Power != m.Power {
			p.SetPower(m.Power)
		}
		if m.Dead && !p.Dead {
			p.Die()
		} else if !m.Dead {
			p.Invuln = HurtInvuln
		}
		p.Lives = m.Lives
		g.fx.Burst(p.CenterX(), p.Y, 8, "hurt", 2.5, true)
	case EvBlockHit:
		if g.level.Grid.Apply(TileChange{CX: m.CX, CY: m.CY, Kind: m.Tile}) {
			g.fx.Burst(float64(m.CX)*TileSize+TileSize/2, float64(m.CY)*TileSize, 4, "dust", 1.5, false)
		}
	case EvBrickBreak:
		if g.level.Grid.Apply(TileChange{CX: m.CX, CY: m.CY, Kind: TileAir}) {
			g.fx.BrickDebris(m.CX, m.CY)
		}
		if p != nil {
			p.Score = m.Score
		}
	case EvPowerUpSpawn:
		if m.PowerUp == nil || findPickup(g.powerUps, m.PowerUp.ID) != nil {
			return
		}
		if pu, ok := pickupFromSnapshot(*m.PowerUp); ok {
			g.powerUps = append(g.powerUps, pu)
		}
	case EvWin:
		g.match.Win()
	case EvGameOver:
		g.match.GameOver()
	case EvCratePickup:
		if c := findPickup(g.powerUps, m.Target); c != nil {
			c.Dead = true
		}
		if p != nil {
			setInventory(p, m.Inventory, m.Slot)
		}
	case EvChat:
		g.chat.Add(m.Name, m.Text)
		log.WithField("from", m.Name).Info(m.Text)
	case EvProjSpawn:
		if m.Proj == nil || g.projectileByID(m.Proj.ID) != nil {
			return
		}
		if pr, ok := projectileFromSpawn(*m.Proj); ok {
			g.projectiles = append(g.projectiles, pr)
		}
		g.trustInventory(m)
	case EvDrawObj:
		if m.Draw == nil || g.drawnByID(m.Draw.ID) != nil {
			return
		}
		if d := NewDrawnObject(m.Draw.ID, m.Draw.Owner, m.Draw.Points); d != nil {
			g.drawn = append(g.drawn, d)
		}
		g.trustInventory(m)
	default:
		log.WithField("event", m.Event).Debug("unknown event dropped")
	}
}

// trustInventory takes the remote player's ammo after a shot it fired; each
// side owns the inventory spending of its own player
func (g *Game) trustInventory(m EventMsg) {
	if m.Player != g.remoteID() {
		return
	}
	setInventory(g.players[m.Player], m.Inventory, m.Slot)
}

func setInventory(p *Player, slots []Slot, active int) {
	inv := Inventory{Slots: append([]Slot(nil), slots...), Active: active}
	if len(slots) == 0 {
		inv.Slots = nil
	}
	if inv.Active >= len(inv.Slots) || inv.Active < 0 {
		inv.Active = -1
	}
	p.Inventory = inv
}

func findPickup(list []*Pickup, id uint32) *Pickup {
	for _, p := range list {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func findEnemy(list []*Enemy, id uint32) *Enemy {
	for _, e := range list {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (g *Game) drawnByID(id uint32) *DrawnObject {
	for _, d := range g.drawn {
		if d.ID == id {
			return d
		}
	}
	return nil
}
