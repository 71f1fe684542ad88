package main

import (
	"errors"
	"testing"
)

func TestBuiltinLevelsParse(t *testing.T) {
	for i := 0; i < LevelCount(); i++ {
		lvl, err := LoadLevel(i)
		if err != nil {
			t.Fatalf("level %d: %v", i, err)
		}
		if lvl.Index != i || lvl.Name == "" {
			t.Errorf("level %d: index %d name %q", i, lvl.Index, lvl.Name)
		}
		if lvl.GoalX <= lvl.SpawnX {
			t.Errorf("level %d: goal %v is not past spawn %v", i, lvl.GoalX, lvl.SpawnX)
		}
		if len(lvl.Enemies) == 0 || len(lvl.Coins) == 0 || len(lvl.Crates) == 0 {
			t.Errorf("level %d: %d enemies %d coins %d crates", i, len(lvl.Enemies), len(lvl.Coins), len(lvl.Crates))
		}
		// spawn stands on solid ground
		if !lvl.Grid.IsSolid(CellAt(lvl.SpawnX), CellAt(lvl.SpawnY)) {
			t.Errorf("level %d: nothing under the spawn", i)
		}
	}
}

func TestLoadLevelWraps(t *testing.T) {
	n := LevelCount()
	lvl, err := LoadLevel(n + 1)
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Index != 1 {
		t.Errorf("index = %d, want 1", lvl.Index)
	}
	if lvl, _ = LoadLevel(-1); lvl.Index != n-1 {
		t.Errorf("negative index = %d, want %d", lvl.Index, n-1)
	}
}

func TestLevelIDsDeterministic(t *testing.T) {
	a, _ := LoadLevel(0)
	b, _ := LoadLevel(0)
	if len(a.Enemies) != len(b.Enemies) {
		t.Fatal("enemy counts differ")
	}
	for i := range a.Enemies {
		if a.Enemies[i].ID != b.Enemies[i].ID || a.Enemies[i].Kind != b.Enemies[i].Kind {
			t.Errorf("enemy %d: %d/%v vs %d/%v", i, a.Enemies[i].ID, a.Enemies[i].Kind, b.Enemies[i].ID, b.Enemies[i].Kind)
		}
	}
	seen := make(map[uint32]bool)
	for _, e := range a.Enemies {
		seen[e.ID] = true
	}
	for _, c := range a.Coins {
		if seen[c.ID] {
			t.Errorf("id %d used twice", c.ID)
		}
		if c.ID < levelIDBase || c.ID >= hostIDBase {
			t.Errorf("level id %d outside the level range", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestParseLevelRowMajorIDs(t *testing.T) {
	lvl, err := ParseLevel(LevelDef{Name: "ids", Rows: []string{
		"..c.g.",
		"S.k..G",
		"######",
	}})
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Coins[0].ID != levelIDBase {
		t.Errorf("coin id = %d", lvl.Coins[0].ID)
	}
	if lvl.Enemies[0].ID != levelIDBase+1 || lvl.Enemies[0].Kind != EnemyWalker {
		t.Errorf("walker id = %d", lvl.Enemies[0].ID)
	}
	if lvl.Enemies[1].ID != levelIDBase+2 || lvl.Enemies[1].Kind != EnemyShell {
		t.Errorf("shell id = %d", lvl.Enemies[1].ID)
	}
	if lvl.SpawnX != 0 || lvl.SpawnY != 2*TileSize {
		t.Errorf("spawn = (%v, %v)", lvl.SpawnX, lvl.SpawnY)
	}
	if lvl.GoalX != 5*TileSize {
		t.Errorf("goal = %v", lvl.GoalX)
	}
}

func TestParseLevelBlocks(t *testing.T) {
	lvl, err := ParseLevel(LevelDef{Rows: []string{
		"?MUB",
		"S.1G",
		"####",
	}})
	if err != nil {
		t.Fatal(err)
	}
	g := lvl.Grid
	if g.At(0, 0) != TileQuestion || g.Content(0, 0) != ContentCoin {
		t.Error("coin block")
	}
	if g.Content(1, 0) != ContentPowerUp || g.Content(2, 0) != ContentOneUp {
		t.Error("power-up and 1-up blocks")
	}
	if g.At(3, 0) != TileBrick {
		t.Error("brick")
	}
	if len(lvl.Crates) != 1 || lvl.Crates[0].Weapon != WeaponGun {
		t.Errorf("crates = %+v", lvl.Crates)
	}
}

func TestParseLevelErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want error
	}{
		{"no spawn", []string{"...G", "####"}, errNoSpawn},
		{"no goal", []string{"S...", "####"}, errNoGoal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevel(LevelDef{Rows: tt.rows})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseLevel(LevelDef{Rows: []string{"S.@G", "####"}}); err == nil {
		t.Error("unknown tile should fail")
	}
	if _, err := ParseLevel(LevelDef{}); err == nil {
		t.Error("empty level should fail")
	}
}

func TestParseLevelPadsShortRows(t *testing.T) {
	lvl, err := ParseLevel(LevelDef{Rows: []string{
		"S....G",
		"##",
	}})
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Grid.W != 6 || lvl.Grid.IsSolid(4, 1) {
		t.Errorf("short row should be padded with air, w=%d", lvl.Grid.W)
	}
}
