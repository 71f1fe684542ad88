package main

import (
	"math"
	"testing"
)

// ---------- helpers ----------

// fakeWorld stands in for the game during enemy and projectile updates
type fakeWorld struct {
	grid    *TileGrid
	players map[uint32]*Player
	shots   []float64 // angles of turret shots
	blasts  []Point
}

func newFakeWorld(w, h int, players ...*Player) *fakeWorld {
	fw := &fakeWorld{grid: floorGrid(w, h), players: make(map[uint32]*Player)}
	for _, p := range players {
		fw.players[p.ID] = p
	}
	return fw
}

func (w *fakeWorld) Grid() *TileGrid { return w.grid }

func (w *fakeWorld) PlayerByID(id uint32) *Player { return w.players[id] }

func (w *fakeWorld) NearestPlayer(x, y float64) *Player {
	var best *Player
	bestD := math.Inf(1)
	for _, p := range w.players {
		if d := Distance(x, y, p.CenterX(), p.CenterY()); p.Alive() && d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

func (w *fakeWorld) SpawnEnemyShot(_ *Enemy, angle float64) {
	w.shots = append(w.shots, angle)
}

func (w *fakeWorld) Explode(x, y float64, _ uint32) {
	w.blasts = append(w.blasts, Point{X: x, Y: y})
}

// ---------- tests ----------

func TestNewEnemyStandsOnCell(t *testing.T) {
	for k := EnemyWalker; k < enemyKindCount; k++ {
		e := NewEnemy(1000, k, 3, 8)
		if e.Bottom() != 9*TileSize {
			t.Errorf("%v bottom = %v, want %v", k, e.Bottom(), 9*TileSize)
		}
		if e.CenterX() != 3*TileSize+TileSize/2 {
			t.Errorf("%v not centered in its cell: %v", k, e.CenterX())
		}
	}
}

func TestWalkerStomp(t *testing.T) {
	e := NewEnemy(1000, EnemyWalker, 3, 8)
	p := NewPlayer(1, "a", 0, 0)
	if pts := e.Stomp(p); pts != 100 {
		t.Errorf("stomp points = %d", pts)
	}
	if !e.Dead || e.Flipped {
		t.Errorf("stomped walker dead=%v flipped=%v", e.Dead, e.Flipped)
	}
	if e.Sprite() != "walker_flat" {
		t.Errorf("sprite = %s", e.Sprite())
	}
	if e.Stomp(p) != 0 || e.Defeat() != 0 {
		t.Error("dead enemy should award nothing")
	}
}

func TestShellHarmlessUntilKicked(t *testing.T) {
	e := NewEnemy(1000, EnemyShell, 5, 8)
	p := NewPlayer(1, "a", 4*TileSize, 9*TileSize) // left of the shell
	if e.Harmless() {
		t.Fatal("walking shell enemy should hurt")
	}

	e.Stomp(p)
	if !e.Shelled || !e.Harmless() || e.Dead {
		t.Fatalf("first stomp: shelled=%v harmless=%v dead=%v", e.Shelled, e.Harmless(), e.Dead)
	}
	if e.H != 28 || e.Bottom() != 9*TileSize {
		t.Errorf("shell should shrink in place: h=%v bottom=%v", e.H, e.Bottom())
	}

	e.Stomp(p)
	if !e.ShellMoving || e.Harmless() {
		t.Fatal("stomping a resting shell should kick it")
	}
	if e.KickedBy != p.ID || e.Dir != 1 {
		t.Errorf("kicked by %d dir %d, want player 1 moving right", e.KickedBy, e.Dir)
	}

	e.Stomp(p)
	if e.ShellMoving {
		t.Error("stomping a moving shell should stop it")
	}
}

func TestShellRevives(t *testing.T) {
	w := newFakeWorld(10, 10)
	e := NewEnemy(1000, EnemyShell, 3, 8)
	e.Stomp(NewPlayer(1, "a", 0, 0))
	for i := 0; i < ShellReviveTicks; i++ {
		e.Update(w)
	}
	if e.Shelled {
		t.Fatal("resting shell should revive")
	}
	if e.H != 40 || math.Abs(e.Bottom()-9*TileSize) > 1 {
		t.Errorf("revived shell h=%v bottom=%v", e.H, e.Bottom())
	}
}

func TestBruteTwoStages(t *testing.T) {
	e := NewEnemy(1000, EnemyBrute, 3, 8)
	p := NewPlayer(1, "a", 0, 0)

	if pts := e.Stomp(p); pts != 100 || e.Dead || e.Stage != 1 {
		t.Fatalf("first stomp: pts=%d dead=%v stage=%d", pts, e.Dead, e.Stage)
	}
	if e.H != 28 {
		t.Errorf("wounded brute h = %v", e.H)
	}
	if pts := e.Stomp(p); pts != 500 || !e.Dead {
		t.Errorf("second stomp: pts=%d dead=%v", pts, e.Dead)
	}
}

func TestFlyerGroundedThenDefeated(t *testing.T) {
	e := NewEnemy(1000, EnemyFlyer, 3, 5)
	p := NewPlayer(1, "a", 0, 0)
	e.Stomp(p)
	if e.Dead || e.Stage != 1 || e.Sprite() != "flyer_grounded" {
		t.Fatalf("first stomp: dead=%v stage=%d", e.Dead, e.Stage)
	}
	e.Stomp(p)
	if !e.Dead {
		t.Error("second stomp should defeat the flyer")
	}
}

func TestDefeatFlipsAndAwardsKindPoints(t *testing.T) {
	tests := []struct {
		kind EnemyKind
		pts  int
	}{
		{EnemyWalker, 100},
		{EnemyShell, 200},
		{EnemyTurret, 200},
		{EnemyBrute, 500},
		{EnemyFlyer, 200},
	}
	for _, tt := range tests {
		e := NewEnemy(1000, tt.kind, 3, 8)
		if got := e.Defeat(); got != tt.pts {
			t.Errorf("%v defeat = %d, want %d", tt.kind, got, tt.pts)
		}
		if !e.Dead || !e.Flipped {
			t.Errorf("%v should be flipped dead", tt.kind)
		}
	}
}

func TestDeadEnemyRemovedAfterAnimation(t *testing.T) {
	w := newFakeWorld(10, 10)
	e := NewEnemy(1000, EnemyWalker, 3, 8)
	e.Stomp(NewPlayer(1, "a", 0, 0))
	for i := 0; i < EnemyDeathTicks-1; i++ {
		e.Update(w)
	}
	if e.Remove {
		t.Fatal("removed too early")
	}
	e.Update(w)
	if !e.Remove {
		t.Error("enemy should be removed after its death animation")
	}
}

func TestWalkerTurnsAtWall(t *testing.T) {
	w := newFakeWorld(10, 10)
	w.grid.Set(5, 8, TileGround)
	e := NewEnemy(1000, EnemyWalker, 4, 8)
	e.Dir = 1
	for i := 0; i < 10; i++ {
		e.Update(w)
	}
	if e.Dir != -1 {
		t.Error("walker should reverse at the wall")
	}
	if e.X+e.W > 5*TileSize {
		t.Errorf("walker entered the wall: right edge %v", e.X+e.W)
	}
}

func TestBruteTurnsAtLedge(t *testing.T) {
	w := newFakeWorld(10, 10)
	w.grid.Set(5, 9, TileAir) // pit
	e := NewEnemy(1000, EnemyBrute, 4, 8)
	e.Dir = 1
	for i := 0; i < 30; i++ {
		e.Update(w)
	}
	if e.Y > 9*TileSize {
		t.Fatal("brute walked into the pit")
	}
	if e.Dir != -1 {
		t.Error("brute should turn around at the ledge")
	}
}

func TestTurretFiresInRange(t *testing.T) {
	target := NewPlayer(1, "a", 7*TileSize, 9*TileSize)
	w := newFakeWorld(20, 10, target)
	e := NewEnemy(1000, EnemyTurret, 3, 8)

	e.Update(w)
	if len(w.shots) != 1 {
		t.Fatalf("shots = %d, want 1", len(w.shots))
	}
	if math.Abs(w.shots[0]) > math.Pi/4 {
		t.Errorf("shot angle %v should point right", w.shots[0])
	}
	for i := 0; i < TurretFireInterval; i++ {
		e.Update(w)
	}
	if len(w.shots) != 1 {
		t.Errorf("turret fired during cooldown: %d shots", len(w.shots))
	}
	e.Update(w)
	if len(w.shots) != 2 {
		t.Errorf("turret should fire again after cooldown, shots = %d", len(w.shots))
	}
}

func TestTurretIgnoresDistantPlayers(t *testing.T) {
	target := NewPlayer(1, "a", 18*TileSize, 9*TileSize)
	w := newFakeWorld(20, 10, target)
	e := NewEnemy(1000, EnemyTurret, 1, 8)
	e.Update(w)
	if len(w.shots) != 0 {
		t.Error("turret should not fire out of range")
	}
}

func TestEnemySnapshotMirror(t *testing.T) {
	e := NewEnemy(1005, EnemyBrute, 3, 8)
	e.Stomp(NewPlayer(1, "a", 0, 0))
	m, ok := enemyFromSnapshot(e.ToSnapshot())
	if !ok {
		t.Fatal("mirror not created")
	}
	if m.ID != e.ID || m.Kind != EnemyBrute || m.Stage != 1 || m.H != e.H {
		t.Errorf("mirror = %+v", m.ToSnapshot())
	}
	if _, ok := enemyFromSnapshot(EnemySnapshot{ID: 1, Kind: "dragon"}); ok {
		t.Error("unknown kinds should be rejected")
	}
}
