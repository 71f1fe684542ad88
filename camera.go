package main

const (
	ViewW        = 800.0
	ViewH        = 480.0
	CameraLerp   = 0.12
	CameraLeadUp = 64.0 // keep some headroom above the tracked point
)

// Camera tracks the active participants inside the level bounds
type Camera struct {
	X, Y float64
}

// Follow moves the camera toward the midpoint of the given bodies. snap jumps
// straight there (level load).
func (c *Camera) Follow(targets []*Player, levelW, levelH float64, snap bool) {
	if len(targets) == 0 {
		return
	}
	var sx, sy float64
	for _, p := range targets {
		sx += p.CenterX()
		sy += p.CenterY()
	}
	n := float64(len(targets))
	tx := Clamp(sx/n-ViewW/2, 0, max(0, levelW-ViewW))
	ty := Clamp(sy/n-ViewH/2-CameraLeadUp/2, 0, max(0, levelH-ViewH))
	if snap {
		c.X, c.Y = tx, ty
		return
	}
	c.X += (tx - c.X) * CameraLerp
	c.Y += (ty - c.Y) * CameraLerp
}

// Visible reports whether a box is inside the view (with a one-tile margin)
func (c *Camera) Visible(b Box) bool {
	return b.Right() > c.X-TileSize && b.Left() < c.X+ViewW+TileSize &&
		b.Bottom() > c.Y-TileSize && b.Top() < c.Y+ViewH+TileSize
}

// HUD holds the externally observed values refreshed at the end of each tick
type HUD struct {
	Level  int
	Name   string
	Phase  Phase
	Role   Role
	Frame  uint64
	Score  int
	Coins  int
	Lives  int
	Power  PowerTier
	Weapon string
	Uses   int
	Peer   bool
}

// DrawCmd is one draw primitive for a rendering surface
type DrawCmd struct {
	Sprite string
	X, Y   float64
	W, H   float64
	Flip   bool
	Alpha  float64
	Text   string
	Points []Point
}

// DrawList returns the draw primitives for everything in view
func (g *Game) DrawList() []DrawCmd {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.level == nil {
		return nil
	}
	cam := g.camera
	out := make([]DrawCmd, 0, 64)
	add := func(sprite string, b Box, flip bool) {
		if cam.Visible(b) {
			out = append(out, DrawCmd{Sprite: sprite, X: b.X - cam.X, Y: b.Y - cam.Y, W: b.W, H: b.H, Flip: flip, Alpha: 1})
		}
	}

	grid := g.level.Grid
	c0, c1 := CellAt(cam.X), CellAt(cam.X+ViewW)
	r0, r1 := CellAt(cam.Y), CellAt(cam.Y+ViewH)
	for cy := r0; cy <= r1; cy++ {
		for cx := c0; cx <= c1; cx++ {
			k := grid.At(cx, cy)
			if k == TileAir || k == TileInvisible {
				continue
			}
			out = append(out, DrawCmd{
				Sprite: tileSprites[k],
				X:      float64(cx)*TileSize - cam.X,
				Y:      float64(cy)*TileSize - cam.Y,
				W:      TileSize,
				H:      TileSize,
				Alpha:  1,
			})
		}
	}
	for _, pl := range g.platforms {
		add("platform", pl.Box(), false)
	}
	for _, c := range g.coins {
		if !c.Dead {
			add("coin", c.Box(), false)
		}
	}
	for _, p := range g.powerUps {
		if !p.Dead {
			add(p.Kind.String(), p.Box(), false)
		}
	}
	for _, e := range g.enemies {
		add(e.Sprite(), e.Box(), e.Dir > 0)
	}
	for _, d := range g.drawn {
		if cam.Visible(d.Box()) {
			out = append(out, DrawCmd{Sprite: "stroke", X: d.X - cam.X, Y: d.Y - cam.Y, W: d.W, H: d.H, Alpha: 1, Points: d.Points})
		}
	}
	for _, p := range g.projectiles {
		add(p.Kind.String(), p.Box(), p.VX < 0)
	}
	for _, id := range [...]uint32{HostPlayerID, GuestPlayerID} {
		p := g.players[id]
		if p == nil || !p.Active {
			continue
		}
		add(playerSprite(p), p.Box(), p.Facing < 0)
	}
	for _, pt := range g.fx.Particles {
		out = append(out, DrawCmd{Sprite: pt.Color, X: pt.X - cam.X, Y: pt.Y - cam.Y, W: pt.Size, H: pt.Size, Alpha: 1})
	}
	for _, st := range g.fx.ScoreTexts {
		out = append(out, DrawCmd{Sprite: "text", X: st.X - cam.X, Y: st.Y + st.OffY - cam.Y, Alpha: st.Alpha, Text: st.Text})
	}
	return out
}

var tileSprites = map[TileKind]string{
	TileGround:       "ground",
	TileBrick:        "brick",
	TileQuestion:     "question",
	TileSpent:        "spent",
	TilePipeTopLeft:  "pipe_tl",
	TilePipeTopRight: "pipe_tr",
	TilePipeLeft:     "pipe_l",
	TilePipeRight:    "pipe_r",
	TileHazard:       "hazard",
}

func playerSprite(p *Player) string {
	tier := "small"
	switch p.Power {
	case PowerBig:
		tier = "big"
	case PowerFire:
		tier = "fire"
	}
	if p.Invuln > 0 && p.Invuln%8 < 4 {
		return "blink"
	}
	return "player_" + tier + "_" + [...]string{"idle", "walk", "run", "jump", "fall", "swing", "dead"}[p.State]
}
