package main

import log "github.com/sirupsen/logrus"

const BrickScore = 50

// collide runs the collision pass. Authoritative instances run all of it; a
// client only runs the responsive subset for its own player (coins and stomp
// bounces) and leaves every other outcome to the host.
func (g *Game) collide() {
	g.indexEnemies()
	if !g.role.authoritative() {
		if self := g.players[g.self]; self.Alive() {
			g.collectCoins(self)
			g.stompBounce(self)
		}
		return
	}

	for _, id := range [...]uint32{HostPlayerID, GuestPlayerID} {
		p := g.players[id]
		if !p.Alive() {
			continue
		}
		if p.Y > g.level.Grid.HeightPx() {
			p.Die()
			g.pushHurt(p)
			continue
		}
		g.collectCoins(p)
		g.collectPowerUps(p)
		g.touchEnemies(p)
		g.touchHazards(p)
		g.touchShots(p)
	}
	g.shellHits()
	g.projectileHits()
}

// indexEnemies rebuilds the broad-phase grid from the live enemies
func (g *Game) indexEnemies() {
	g.spatial.Clear()
	for i, e := range g.enemies {
		if !e.Dead {
			g.spatial.InsertBox(e.Box(), EntityRef{Kind: 'e', Idx: i})
		}
	}
}

// nearbyEnemies returns live enemies whose boxes overlap b, each once
func (g *Game) nearbyEnemies(b Box) []*Enemy {
	g.queryBuf = g.spatial.QueryBuf(b, g.queryBuf[:0])
	var out []*Enemy
	for _, ref := range g.queryBuf {
		if ref.Kind != 'e' {
			continue
		}
		e := g.enemies[ref.Idx]
		if e.Dead || !Overlaps(b, e.Box()) || containsEnemy(out, e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsEnemy(list []*Enemy, e *Enemy) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

func (g *Game) collectCoins(p *Player) {
	box := p.Box()
	for _, c := range g.coins {
		if c.Dead || !Overlaps(box, c.Box()) {
			continue
		}
		c.Dead = true
		if p.CollectCoin() && log.IsLevelEnabled(log.DebugLevel) {
			log.WithFields(log.Fields{"player": p.ID, "coins": p.Coins}).Debug("extra life from coins")
		}
		g.events.Push(GameEvent{
			Msg: EventMsg{Event: EvCoin, Player: p.ID, Target: c.ID, Points: CoinScore,
				Score: p.Score, Coins: p.Coins, Lives: p.Lives},
			X: c.CenterX(), Y: c.Y,
			// the client's own pickup is provisional, the host relays the outcome
			Local: !g.role.authoritative(),
		})
	}
}

func (g *Game) collectPowerUps(p *Player) {
	box := p.Box()
	for _, pu := range g.powerUps {
		if !pu.Collectible() || !Overlaps(box, pu.Box()) {
			continue
		}
		pu.Dead = true
		if pu.Kind == PickupCrate {
			p.Inventory.Add(pu.Weapon, weaponDefs[pu.Weapon].Uses)
			inv := p.Inventory.Clone()
			g.events.Push(GameEvent{
				Msg: EventMsg{Event: EvCratePickup, Player: p.ID, Target: pu.ID,
					Inventory: inv.Slots, Slot: inv.Active},
				X: pu.CenterX(), Y: pu.Y,
			})
			continue
		}
		p.ApplyPowerUp(pu.Kind)
		points := PowerUpScore
		if pu.Kind == PickupOneUp {
			points = 0
		}
		g.events.Push(GameEvent{
			Msg: EventMsg{Event: EvPowerUp, Player: p.ID, Target: pu.ID, Points: points,
				Power: p.Power, Score: p.Score, Lives: p.Lives},
			X: pu.CenterX(), Y: pu.Y,
		})
	}
}

// touchEnemies resolves stomps, shell kicks and contact damage for one player
func (g *Game) touchEnemies(p *Player) {
	for _, e := range g.nearbyEnemies(p.Box()) {
		if p.Dead {
			return
		}
		switch {
		case StompCheck(&p.Body, &e.Body):
			points := e.Stomp(p)
			p.Score += points
			p.Bounce()
			g.events.Push(GameEvent{
				Msg: EventMsg{Event: EvStomp, Player: p.ID, Target: e.ID, Points: points, Score: p.Score},
				X:   e.CenterX(), Y: e.Y,
			})
		case e.Harmless():
			if e.Kind == EnemyShell && e.Shelled {
				e.Kick(p)
				p.StompGrace = StompGraceTime
			}
		case p.StompGrace > 0 || p.Invuln > 0:
		default:
			if p.Hurt() && log.IsLevelEnabled(log.DebugLevel) {
				log.WithFields(log.Fields{"player": p.ID, "enemy": e.Kind.String(), "lives": p.Lives}).Debug("player killed")
			}
			g.pushHurt(p)
		}
	}
}

// touchHazards hurts a player standing on a hazard tile
func (g *Game) touchHazards(p *Player) {
	if p.Dead || p.Invuln > 0 || !p.OnGround {
		return
	}
	grid := g.level.Grid
	cy := CellAt(p.Bottom() + 1)
	for cx := CellAt(p.X); cx <= CellAt(p.X+p.W-1); cx++ {
		if grid.IsHazard(cx, cy) {
			p.Hurt()
			g.pushHurt(p)
			return
		}
	}
}

// touchShots applies enemy projectiles to a player
func (g *Game) touchShots(p *Player) {
	box := p.Box()
	for _, pr := range g.projectiles {
		if p.Dead {
			return
		}
		if !pr.Harmful() || !Overlaps(box, pr.Box()) {
			continue
		}
		pr.Dead = true
		if p.Invuln == 0 {
			p.Hurt()
			g.pushHurt(p)
		}
	}
}

func (g *Game) pushHurt(p *Player) {
	g.events.Push(GameEvent{
		Msg: EventMsg{Event: EvHurt, Player: p.ID, Power: p.Power, Lives: p.Lives,
			Score: p.Score, Dead: p.Dead},
		X: p.CenterX(), Y: p.Y,
	})
}

// shellHits lets moving shells defeat the enemies they run into
func (g *Game) shellHits() {
	for _, shell := range g.enemies {
		if shell.Dead || !shell.ShellMoving {
			continue
		}
		for _, e := range g.nearbyEnemies(shell.Box()) {
			if e == shell {
				continue
			}
			points := e.Defeat()
			g.credit(shell.KickedBy, points, e)
		}
	}
}

// projectileHits resolves player projectiles and explosions against enemies
func (g *Game) projectileHits() {
	for i := 0; i < len(g.projectiles); i++ {
		pr := g.projectiles[i]
		if pr.Dead || pr.Kind == ProjEnemyShot || pr.Kind == ProjGrapple {
			continue
		}
		for _, e := range g.nearbyEnemies(pr.Box()) {
			if !pr.Strike(e, g) {
				continue
			}
			points := e.Defeat()
			g.credit(pr.Owner, points, e)
			if pr.Dead {
				break
			}
		}
	}
}

// credit awards defeat points to a player and shows them locally
func (g *Game) credit(playerID uint32, points int, e *Enemy) {
	if points == 0 {
		return
	}
	if p := g.players[playerID]; p != nil {
		p.Score += points
	}
	g.events.Push(GameEvent{
		Msg:   EventMsg{Event: EvStomp, Player: playerID, Target: e.ID, Points: points},
		X:     e.CenterX(),
		Y:     e.Y,
		Local: true,
	})
}

// stompBounce gives the client's own player an immediate bounce off an enemy.
// The enemy's fate is left to the host.
func (g *Game) stompBounce(p *Player) {
	if p.StompGrace > 0 {
		return
	}
	for _, e := range g.nearbyEnemies(p.Box()) {
		if StompCheck(&p.Body, &e.Body) {
			p.Bounce()
			return
		}
	}
}

// headHit applies a block struck from below by p
func (g *Game) headHit(p *Player, hit CellHit) {
	grid := g.level.Grid
	content := grid.Content(hit.CX, hit.CY)
	outcome := grid.Hit(hit.CX, hit.CY, p.Power > PowerSmall)
	if outcome == HitNone {
		return
	}
	x := float64(hit.CX)*TileSize + TileSize/2
	y := float64(hit.CY) * TileSize
	g.bumpKill(p, hit)

	switch outcome {
	case HitBump:
		g.fx.Burst(x, y, 4, "dust", 1.5, false)
	case HitBreak:
		p.Score += BrickScore
		g.fx.BrickDebris(hit.CX, hit.CY)
		g.events.Push(GameEvent{
			Msg: EventMsg{Event: EvBrickBreak, Player: p.ID, CX: hit.CX, CY: hit.CY, Tile: TileAir,
				Points: BrickScore, Score: p.Score},
			X: x, Y: y,
		})
	case HitReveal:
		g.events.Push(GameEvent{
			Msg: EventMsg{Event: EvBlockHit, Player: p.ID, CX: hit.CX, CY: hit.CY, Tile: TileSpent},
			X:   x, Y: y,
		})
		g.releaseContent(p, content, hit)
	}
}

// releaseContent pops a question block's contents
func (g *Game) releaseContent(p *Player, content BlockContent, hit CellHit) {
	x := float64(hit.CX)*TileSize + TileSize/2
	y := float64(hit.CY) * TileSize
	switch content {
	case ContentCoin:
		p.CollectCoin()
		g.fx.Burst(x, y-TileSize/2, 6, "coin", 2, true)
		g.events.Push(GameEvent{
			Msg: EventMsg{Event: EvCoin, Player: p.ID, CX: hit.CX, CY: hit.CY, Points: CoinScore,
				Score: p.Score, Coins: p.Coins, Lives: p.Lives},
			X: x, Y: y - TileSize,
		})
	case ContentPowerUp, ContentOneUp:
		kind := PickupMushroom
		switch {
		case content == ContentOneUp:
			kind = PickupOneUp
		case p.Power > PowerSmall:
			kind = PickupFlower
		}
		pu := NewEmergingPowerUp(g.ids.Next(), kind, hit.CX, hit.CY)
		g.powerUps = append(g.powerUps, pu)
		snap := pu.ToSnapshot()
		g.events.Push(GameEvent{
			Msg: EventMsg{Event: EvPowerUpSpawn, Target: pu.ID, CX: hit.CX, CY: hit.CY, PowerUp: &snap},
			X:   x, Y: y,
		})
	}
}

// bumpKill defeats enemies standing on top of a struck block
func (g *Game) bumpKill(p *Player, hit CellHit) {
	top := float64(hit.CY) * TileSize
	cell := Box{X: float64(hit.CX) * TileSize, Y: top - 4, W: TileSize, H: 6}
	for _, e := range g.nearbyEnemies(cell) {
		if e.Bottom() > top+2 {
			continue
		}
		g.credit(p.ID, e.Defeat(), e)
	}
}

// react is the single consumer of the tick's event queue: it shows local
// feedback and relays authoritative outcomes to the peer
func (g *Game) react(ev GameEvent) {
	m := ev.Msg
	switch m.Event {
	case EvCoin, EvStomp, EvPowerUp:
		g.fx.AddScoreText(ev.X, ev.Y, m.Points)
		if m.Event == EvCoin {
			g.fx.Burst(ev.X, ev.Y, 5, "coin", 1.5, false)
		}
	case EvBrickBreak:
		g.fx.AddScoreText(ev.X, ev.Y, m.Points)
	case EvHurt:
		g.fx.Burst(ev.X, ev.Y, 8, "hurt", 2.5, true)
	}
	if !ev.Local {
		g.sendEvent(m)
	}
}
