package main

// Phase represents the lifecycle of a level
type Phase uint8

const (
	PhaseLoading  Phase = 0
	PhasePlaying  Phase = 1
	PhaseWin      Phase = 2
	PhaseGameOver Phase = 3
)

var phaseNames = [...]string{"loading", "playing", "win", "gameover"}

func (p Phase) String() string {
	if int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Phase timings in ticks
const (
	WinDebounce   = 15  // consecutive ticks past the goal
	WinDelay      = 180 // before the next level loads
	GameOverDelay = 240 // before the session resets
)

// MatchState holds the current level's phase and its timers
type MatchState struct {
	Phase    Phase
	goalHold int
	timer    int
}

// Start enters Playing for a freshly loaded level
func (ms *MatchState) Start() {
	ms.Phase = PhasePlaying
	ms.goalHold = 0
	ms.timer = 0
}

// TrackGoal feeds one tick of the goal check. Returns true on the tick the
// debounce completes and the phase switches to Win.
func (ms *MatchState) TrackGoal(reached bool) bool {
	if ms.Phase != PhasePlaying {
		return false
	}
	if !reached {
		ms.goalHold = 0
		return false
	}
	ms.goalHold++
	if ms.goalHold < WinDebounce {
		return false
	}
	ms.Win()
	return true
}

// Win enters the Win phase and arms the next-level delay
func (ms *MatchState) Win() {
	ms.Phase = PhaseWin
	ms.timer = WinDelay
}

// GameOver enters the GameOver phase and arms the reset delay
func (ms *MatchState) GameOver() {
	ms.Phase = PhaseGameOver
	ms.timer = GameOverDelay
}

// Countdown advances the Win/GameOver delay and reports when it expires
func (ms *MatchState) Countdown() bool {
	if ms.Phase != PhaseWin && ms.Phase != PhaseGameOver {
		return false
	}
	if ms.timer > 0 {
		ms.timer--
	}
	return ms.timer == 0
}
