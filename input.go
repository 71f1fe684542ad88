package main

import "math"

// InputKeys is the per-tick intent snapshot relayed in both directions
type InputKeys struct {
	Left         bool    `msgpack:"left"`
	Right        bool    `msgpack:"right"`
	Jump         bool    `msgpack:"jump"`
	Run          bool    `msgpack:"run"`
	Fire         bool    `msgpack:"fire"`
	MouseAngle   float64 `msgpack:"mouseAngle"`
	MouseX       float64 `msgpack:"mouseX"` // world coords
	MouseY       float64 `msgpack:"mouseY"`
	MouseDown    bool    `msgpack:"mouseDown"`
	MouseClicked bool    `msgpack:"mouseClicked"`
	Slot         int     `msgpack:"slot"` // -1 keeps the selection, an empty slot selects bare hands
}

// InputSource produces the local participant's intent once per tick
type InputSource interface {
	Sample(frame uint64, self *Player) InputKeys
}

// IdleInput never presses anything
type IdleInput struct{}

func (IdleInput) Sample(uint64, *Player) InputKeys {
	return InputKeys{Slot: -1}
}

// Autopilot is a headless input source: it runs right, hops over walls and
// gaps, and fires its active weapon at a fixed cadence.
type Autopilot struct {
	JumpEvery uint64
	FireEvery uint64
	lastX     float64
	stuck     int
}

func (a *Autopilot) Sample(frame uint64, self *Player) InputKeys {
	in := InputKeys{Right: true, Run: true, Slot: -1}
	if self == nil {
		return in
	}
	if math.Abs(self.X-a.lastX) < 0.5 {
		a.stuck++
	} else {
		a.stuck = 0
	}
	a.lastX = self.X

	every := a.JumpEvery
	if every == 0 {
		every = 90
	}
	if self.HitWall || a.stuck > 4 || frame%every < 12 {
		in.Jump = true
	}
	if a.FireEvery > 0 && frame%a.FireEvery == 0 {
		in.Fire = true
	}
	in.MouseAngle = 0
	in.MouseX = self.X + 200
	in.MouseY = self.Y
	return in
}
