package main

import (
	"math/rand/v2"
	"strconv"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	TickSeconds      = float32(1.0 / 60)
	ScoreTextSeconds = 0.8
	ScoreTextRise    = 36.0
	MaxParticles     = 256
)

// Particle is a purely visual, never replicated speck
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   int
	Size   float64
	Color  string
	Grav   bool
}

// ScoreText is a floating "+200" label that rises and fades out
type ScoreText struct {
	X, Y  float64
	Text  string
	OffY  float64
	Alpha float64
	rise  *gween.Tween
	fade  *gween.Tween
}

// Effects owns the local-only particles and score labels of one instance
type Effects struct {
	Particles  []Particle
	ScoreTexts []*ScoreText
}

// AddScoreText spawns a label above (x, y)
func (fx *Effects) AddScoreText(x, y float64, points int) {
	if points <= 0 {
		return
	}
	fx.ScoreTexts = append(fx.ScoreTexts, &ScoreText{
		X:     x,
		Y:     y,
		Text:  "+" + strconv.Itoa(points),
		Alpha: 1,
		rise:  gween.New(0, -ScoreTextRise, ScoreTextSeconds, ease.OutQuad),
		fade:  gween.New(1, 0, ScoreTextSeconds, ease.InQuad),
	})
}

// Burst emits n particles from (x, y)
func (fx *Effects) Burst(x, y float64, n int, color string, speed float64, gravity bool) {
	for i := 0; i < n && len(fx.Particles) < MaxParticles; i++ {
		fx.Particles = append(fx.Particles, Particle{
			X:     x,
			Y:     y,
			VX:    (rand.Float64()*2 - 1) * speed,
			VY:    (rand.Float64()*2 - 1.4) * speed,
			Life:  20 + rand.IntN(20),
			Size:  2 + rand.Float64()*3,
			Color: color,
			Grav:  gravity,
		})
	}
}

// BrickDebris throws four chunks out of a broken brick cell
func (fx *Effects) BrickDebris(cx, cy int) {
	x := float64(cx)*TileSize + TileSize/2
	y := float64(cy)*TileSize + TileSize/2
	for _, d := range [4][2]float64{{-2.5, -8}, {2.5, -8}, {-2, -5}, {2, -5}} {
		if len(fx.Particles) >= MaxParticles {
			return
		}
		fx.Particles = append(fx.Particles, Particle{
			X: x, Y: y, VX: d[0], VY: d[1], Life: 60, Size: 8, Color: "brick", Grav: true,
		})
	}
}

// Update advances and culls every effect
func (fx *Effects) Update() {
	live := fx.Particles[:0]
	for _, p := range fx.Particles {
		p.Life--
		if p.Life <= 0 {
			continue
		}
		if p.Grav {
			p.VY += Gravity
		}
		p.X += p.VX
		p.Y += p.VY
		live = append(live, p)
	}
	fx.Particles = live

	texts := fx.ScoreTexts[:0]
	for _, st := range fx.ScoreTexts {
		off, done := st.rise.Update(TickSeconds)
		alpha, _ := st.fade.Update(TickSeconds)
		st.OffY = float64(off)
		st.Alpha = float64(alpha)
		if done {
			continue
		}
		texts = append(texts, st)
	}
	fx.ScoreTexts = texts
}

// Reset drops every effect (level change)
func (fx *Effects) Reset() {
	fx.Particles = fx.Particles[:0]
	fx.ScoreTexts = fx.ScoreTexts[:0]
}
