package main

import (
	"fmt"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Role decides which instance is authoritative for shared state
type Role uint8

const (
	RoleSolo   Role = iota // no peer, authoritative
	RoleHost               // authoritative, broadcasts snapshots
	RoleClient             // predicts its own player, mirrors the rest
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleClient:
		return "client"
	}
	return "solo"
}

func (r Role) authoritative() bool {
	return r != RoleClient
}

// Game holds the simulation of one instance
type Game struct {
	mu    sync.Mutex
	role  Role
	self  uint32 // id of the locally controlled player
	frame uint64

	level   *Level
	match   MatchState
	players map[uint32]*Player

	enemies     []*Enemy
	coins       []*Pickup
	powerUps    []*Pickup // power-ups and weapon crates
	platforms   []*Platform
	projectiles []*Projectile
	drawn       []*DrawnObject

	spatial  *SpatialGrid
	queryBuf []EntityRef
	ids      *IDAllocator
	events   EventQueue
	fx       Effects
	camera   Camera
	hud      HUD
	chat     ChatLog

	input       InputSource
	remoteInput InputKeys
	sender      Sender
	inbox       *Inbox
	seq         uint32
	seen        *seenSet
	peerUp      bool
}

// NewGame creates a game for role. The host and solo games control the host
// player; a client controls the guest player and waits for RESTART.
func NewGame(role Role, name string, input InputSource) *Game {
	if input == nil {
		input = IdleInput{}
	}
	g := &Game{
		role:    role,
		self:    HostPlayerID,
		players: make(map[uint32]*Player, 2),
		ids:     NewIDAllocator(runtimeIDBase(role)),
		input:   input,
		inbox:   NewInbox(),
		seen:    newSeenSet(512),
	}
	host := NewPlayer(HostPlayerID, "host", 0, 0)
	guest := NewPlayer(GuestPlayerID, "guest", 0, 0)
	guest.Active = false
	if role == RoleClient {
		g.self = GuestPlayerID
		guest.Active = true
		guest.Name = name
	} else if name != "" {
		host.Name = name
	}
	g.players[HostPlayerID] = host
	g.players[GuestPlayerID] = guest
	g.remoteInput = InputKeys{Slot: -1}
	return g
}

// Start loads the first level on an authoritative instance. Clients stay in
// Loading until the host sends RESTART.
func (g *Game) Start(level int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.role.authoritative() {
		return nil
	}
	return g.loadLevel(level, true)
}

// SetSender installs the outbound transport (nil while disconnected)
func (g *Game) SetSender(s Sender) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sender = s
}

// Inbox returns the staging area fed by the transport's read loop
func (g *Game) Inbox() *Inbox {
	return g.inbox
}

// Role returns the current role
func (g *Game) Role() Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.role
}

// Loaded reports whether a level has been built
func (g *Game) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level != nil
}

// SetRole switches role, e.g. promoting a disconnected client to solo.
// Runtime ids keep their range so already spawned entities never collide.
func (g *Game) SetRole(r Role) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.role == r {
		return
	}
	log.WithFields(log.Fields{"from": g.role, "to": r}).Info("game role changed")
	g.role = r
	if r == RoleClient && g.self == GuestPlayerID {
		// rejoining: wait for the host's RESTART
		g.match.Phase = PhaseLoading
	}
}

// PeerJoined marks the remote participant present. The host answers with a
// RESTART and an immediate snapshot so the guest can build its level.
func (g *Game) PeerJoined(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.peerUp = true
	remote := g.players[g.remoteID()]
	remote.Active = true
	if name != "" {
		remote.Name = name
	}
	g.remoteInput = InputKeys{Slot: -1}
	if g.role != RoleHost || g.level == nil {
		return
	}
	if remote.Dead || remote.Y > g.level.Grid.HeightPx() {
		remote.Respawn(g.level.SpawnX+TileSize, g.level.SpawnY)
	} else if local := g.players[g.self]; local.Alive() {
		remote.Place(local.X+TileSize, local.Bottom())
	}
	g.send(MsgRestart, RestartMsg{Level: g.level.Index})
	g.broadcastState()
}

// PeerLeft marks the remote participant gone. Its avatar stops being simulated.
func (g *Game) PeerLeft() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.peerUp = false
	remote := g.players[g.remoteID()]
	remote.Active = false
	remote.GrappleID = 0
	g.remoteInput = InputKeys{Slot: -1}
}

// SendChat records a chat line locally and relays it
func (g *Game) SendChat(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	self := g.players[g.self]
	g.chat.Add(self.Name, text)
	g.sendEvent(EventMsg{Event: EvChat, Player: self.ID, Name: self.Name, Text: text})
}

// Chat returns the chat log
func (g *Game) Chat() []ChatLine {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chat.Lines()
}

// HUD returns the values refreshed at the end of the last tick
func (g *Game) HUD() HUD {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hud
}

// Snapshot returns the state a host would send now
func (g *Game) Snapshot() StateMsg {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buildState()
}

// Grid returns the current level's tile grid
func (g *Game) Grid() *TileGrid {
	return g.level.Grid
}

// PlayerByID returns an active player
func (g *Game) PlayerByID(id uint32) *Player {
	p := g.players[id]
	if p == nil || !p.Active {
		return nil
	}
	return p
}

// NearestPlayer returns the closest alive player to (x, y)
func (g *Game) NearestPlayer(x, y float64) *Player {
	var best *Player
	bestD := math.Inf(1)
	for _, p := range g.players {
		if !p.Alive() {
			continue
		}
		if d := Distance(x, y, p.CenterX(), p.CenterY()); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// SpawnEnemyShot fires a turret shot and announces it to the peer
func (g *Game) SpawnEnemyShot(e *Enemy, angle float64) {
	shot := NewProjectile(g.ids.Next(), e.ID, ProjEnemyShot, e.CenterX(), e.CenterY(), angle)
	g.projectiles = append(g.projectiles, shot)
	spawn := shot.ToSpawn()
	g.events.Push(GameEvent{Msg: EventMsg{Event: EvProjSpawn, Proj: &spawn}})
}

// Explode spawns a local explosion. Explosions are re-derived on both sides
// from the projectile that caused them and are never relayed.
func (g *Game) Explode(x, y float64, owner uint32) {
	g.projectiles = append(g.projectiles, NewExplosion(g.ids.Next(), owner, x, y))
	g.fx.Burst(x, y, 24, "fire", 5, false)
}

func (g *Game) remoteID() uint32 {
	if g.self == HostPlayerID {
		return GuestPlayerID
	}
	return HostPlayerID
}

// loadLevel builds level index and places both players at its spawn. reset
// restores fresh-session profiles.
func (g *Game) loadLevel(index int, reset bool) error {
	g.match.Phase = PhaseLoading
	lvl, err := LoadLevel(index)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	g.level = lvl
	g.enemies = lvl.Enemies
	g.coins = lvl.Coins
	g.powerUps = lvl.Crates
	g.platforms = lvl.Platforms
	g.projectiles = nil
	g.drawn = nil
	g.spatial = NewSpatialGrid(lvl.Grid.WidthPx(), lvl.Grid.HeightPx())
	g.events.Reset()
	g.fx.Reset()

	for i, id := range [...]uint32{HostPlayerID, GuestPlayerID} {
		p := g.players[id]
		if reset {
			p.ResetProfile()
		}
		p.Dead = false
		p.DeathTimer = 0
		p.GrappleID = 0
		p.stroke = nil
		p.Invuln = 0
		p.SetPower(p.Power)
		p.Place(lvl.SpawnX+float64(i)*TileSize, lvl.SpawnY)
	}
	g.camera.Follow(g.activePlayers(), lvl.Grid.WidthPx(), lvl.Grid.HeightPx(), true)
	g.match.Start()
	log.WithFields(log.Fields{"levelIndex": index, "name": lvl.Name, "reset": reset, "role": g.role}).Info("level loaded")
	return nil
}

func (g *Game) activePlayers() []*Player {
	out := make([]*Player, 0, 2)
	for _, id := range [...]uint32{HostPlayerID, GuestPlayerID} {
		if p := g.players[id]; p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Tick advances the simulation by one frame
func (g *Game) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.drainInbox()
	if g.level == nil {
		return
	}

	switch g.match.Phase {
	case PhasePlaying:
		g.step()
	case PhaseWin, PhaseGameOver:
		g.frame++
		if g.role.authoritative() && g.match.Countdown() {
			g.advance()
		}
	}
	g.closeout()
}

// step is one Playing tick
func (g *Game) step() {
	g.frame++
	self := g.players[g.self]
	in := g.input.Sample(g.frame, self)
	g.send(MsgInput, InputMsg{Frame: g.frame, Keys: in})

	g.carryRiders()
	g.updatePlayer(self, in, true)
	if remote := g.players[g.remoteID()]; remote.Active {
		g.updatePlayer(remote, g.remoteInput, false)
	}

	auth := g.role.authoritative()
	if auth {
		g.updateEnemies()
		for _, p := range g.powerUps {
			p.Update(g.level.Grid)
		}
		for _, pl := range g.platforms {
			pl.Update()
		}
	} else {
		for _, pl := range g.platforms {
			pl.Drift()
		}
	}

	for i := 0; i < len(g.projectiles); i++ {
		g.projectiles[i].Update(g)
	}
	for _, d := range g.drawn {
		d.Update(g.level.Grid)
	}

	g.collide()
	g.events.Drain(g.react)

	if g.role == RoleHost && g.frame%SnapshotEvery == 0 {
		g.broadcastState()
	}
	if auth {
		g.checkEnd()
	}
}

// updatePlayer runs input, weapons, movement and head-hits for one player.
// Weapons fire only for the local player; the remote player's shots arrive
// as PROJ_SPAWN events.
func (g *Game) updatePlayer(p *Player, in InputKeys, local bool) {
	if p.Alive() {
		if in.Slot >= 0 {
			p.Inventory.Select(in.Slot)
		}
		if local {
			g.handleWeapons(p, in)
		}
	}
	wasDead := p.Dead
	hits := p.Update(in, g.level.Grid)
	if p.Dead {
		if wasDead && p.DeathDone() && g.role.authoritative() && p.Lives > 0 {
			g.respawn(p)
		}
		return
	}

	for _, pl := range g.platforms {
		ResolveDynamicObject(&p.Body, &pl.DynamicObject)
	}
	for _, d := range g.drawn {
		if !d.Dead {
			ResolveDynamicObject(&p.Body, &d.DynamicObject)
		}
	}
	if p.GrappleID != 0 {
		if hook := g.projectileByID(p.GrappleID); hook == nil || hook.Dead {
			p.GrappleID = 0
		}
	}

	if g.role.authoritative() {
		if hit, ok := NearestHit(&p.Body, hits); ok {
			g.headHit(p, hit)
		}
	}
}

// respawn brings a player back next to a living partner, or at the level spawn
func (g *Game) respawn(p *Player) {
	x, y := g.level.SpawnX, g.level.SpawnY
	for _, o := range g.players {
		if o != p && o.Alive() && o.OnGround {
			x, y = o.X, o.Bottom()
			break
		}
	}
	p.Respawn(x, y)
}

// carryRiders moves bodies standing on platforms before they move themselves
func (g *Game) carryRiders() {
	for _, pl := range g.platforms {
		for _, p := range g.players {
			if p.Alive() {
				pl.Carry(&p.Body)
			}
		}
	}
}

func (g *Game) handleWeapons(p *Player, in InputKeys) {
	fire := in.Fire || in.MouseClicked
	edge := fire && !p.prevFire
	p.prevFire = fire

	slot, armed := p.Inventory.Current()
	if armed && slot.Kind == WeaponPencil {
		if in.MouseDown {
			p.stroke = AppendStrokePoint(p.stroke, in.MouseX, in.MouseY)
			return
		}
		if len(p.stroke) > 0 {
			g.finishStroke(p)
		}
		return
	}
	p.stroke = nil

	if !fire || p.FireCD > 0 {
		return
	}

	var kind ProjectileKind
	switch {
	case armed:
		switch slot.Kind {
		case WeaponGun:
			kind = ProjBullet
		case WeaponRocket:
			kind = ProjRocket
		case WeaponGrenade:
			kind = ProjGrenade
		case WeaponSword:
			kind = ProjSlash
		case WeaponGrapple:
			if !edge {
				return
			}
			if p.GrappleID != 0 {
				p.GrappleID = 0
				return
			}
			kind = ProjGrapple
		default:
			return
		}
	case p.Power == PowerFire:
		if g.ownedCount(p.ID, ProjFireball) >= MaxFireballs {
			return
		}
		kind = ProjFireball
	default:
		return
	}

	proj := NewPlayerProjectile(g.ids.Next(), p, kind, in.MouseAngle)
	g.projectiles = append(g.projectiles, proj)
	if armed {
		p.FireCD = weaponDefs[slot.Kind].Cooldown
		p.Inventory.Consume()
	} else {
		p.FireCD = 12
	}
	spawn := proj.ToSpawn()
	inv := p.Inventory.Clone()
	g.events.Push(GameEvent{Msg: EventMsg{
		Event:     EvProjSpawn,
		Player:    p.ID,
		Proj:      &spawn,
		Inventory: inv.Slots,
		Slot:      inv.Active,
	}})
}

func (g *Game) finishStroke(p *Player) {
	stroke := p.stroke
	p.stroke = nil
	d := NewDrawnObject(g.ids.Next(), p.ID, stroke)
	if d == nil {
		return
	}
	g.drawn = append(g.drawn, d)
	p.Inventory.Consume()
	spawn := d.ToSpawn()
	inv := p.Inventory.Clone()
	g.events.Push(GameEvent{Msg: EventMsg{
		Event:     EvDrawObj,
		Player:    p.ID,
		Draw:      &spawn,
		Inventory: inv.Slots,
		Slot:      inv.Active,
	}})
}

func (g *Game) ownedCount(owner uint32, kind ProjectileKind) int {
	n := 0
	for _, pr := range g.projectiles {
		if !pr.Dead && pr.Owner == owner && pr.Kind == kind {
			n++
		}
	}
	return n
}

func (g *Game) projectileByID(id uint32) *Projectile {
	for _, pr := range g.projectiles {
		if pr.ID == id {
			return pr
		}
	}
	return nil
}

// updateEnemies wakes enemies near a player and advances the awake ones.
// Dead enemies always run out their death animation.
func (g *Game) updateEnemies() {
	for _, e := range g.enemies {
		if !e.Activated && !e.Dead {
			for _, p := range g.players {
				if p.Alive() && math.Abs(p.CenterX()-e.CenterX()) < ActivationRange {
					e.Activated = true
					break
				}
			}
			if !e.Activated {
				continue
			}
		}
		e.Update(g)
		if e.Dead {
			continue
		}
		for _, d := range g.drawn {
			if !d.Dead && ResolveDynamicObject(&e.Body, &d.DynamicObject) && e.HitWall {
				e.Dir = -e.Dir
			}
		}
	}
}

// checkEnd runs the win and game-over checks on an authoritative instance
func (g *Game) checkEnd() {
	reached := false
	for _, p := range g.players {
		if p.Alive() && p.X >= g.level.GoalX {
			reached = true
			break
		}
	}
	if g.match.TrackGoal(reached) {
		log.WithFields(log.Fields{"levelIndex": g.level.Index, "frame": g.frame}).Info("level cleared")
		g.pushEnd(EvWin)
		return
	}
	for _, p := range g.players {
		if p.Active && p.Lives == 0 && p.DeathDone() {
			g.match.GameOver()
			log.WithFields(log.Fields{"levelIndex": g.level.Index, "player": p.ID}).Info("game over")
			g.pushEnd(EvGameOver)
			return
		}
	}
}

func (g *Game) pushEnd(kind string) {
	ev := EventMsg{Event: kind, Level: g.level.Index, Frame: g.frame}
	for _, p := range g.activePlayers() {
		ev.Score += p.Score
		ev.Coins += p.Coins
		ev.Names = append(ev.Names, p.Name)
	}
	g.sendEvent(ev)
}

// advance loads the next level after Win, or resets the session after GameOver
func (g *Game) advance() {
	next, reset := g.level.Index+1, false
	if g.match.Phase == PhaseGameOver {
		next, reset = 0, true
	}
	if err := g.loadLevel(next, reset); err != nil {
		log.WithError(err).Error("advance failed")
		return
	}
	g.send(MsgRestart, RestartMsg{Level: g.level.Index, Reset: reset})
	g.broadcastState()
}

// closeout culls finished entities and refreshes effects, camera and HUD
func (g *Game) closeout() {
	g.fx.Update()
	if g.level == nil {
		return
	}
	if g.role.authoritative() {
		g.enemies = cull(g.enemies, func(e *Enemy) bool { return e.Remove })
		g.coins = cull(g.coins, func(c *Pickup) bool { return c.Dead })
		g.powerUps = cull(g.powerUps, func(p *Pickup) bool { return p.Dead })
	}
	g.projectiles = cull(g.projectiles, func(p *Projectile) bool { return p.Dead })
	g.drawn = cull(g.drawn, func(d *DrawnObject) bool { return d.Dead })

	grid := g.level.Grid
	g.camera.Follow(g.activePlayers(), grid.WidthPx(), grid.HeightPx(), false)

	self := g.players[g.self]
	g.hud = HUD{
		Level: g.level.Index,
		Name:  g.level.Name,
		Phase: g.match.Phase,
		Role:  g.role,
		Frame: g.frame,
		Score: self.Score,
		Coins: self.Coins,
		Lives: self.Lives,
		Power: self.Power,
		Peer:  g.peerUp,
	}
	if slot, ok := self.Inventory.Current(); ok {
		g.hud.Weapon = slot.Kind.String()
		g.hud.Uses = slot.Uses
	}
}

// cull removes entities matching done, in place
func cull[T any](items []T, done func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if !done(it) {
			out = append(out, it)
		}
	}
	clear(items[len(out):])
	return out
}
