package main

import "testing"

func TestNewPlayer(t *testing.T) {
	p := NewPlayer(1, "Alice", 100, 200)
	if p.ID != 1 || p.Name != "Alice" {
		t.Errorf("unexpected identity %d %s", p.ID, p.Name)
	}
	if p.Bottom() != 200 || p.X != 100 {
		t.Errorf("feet at (%v, %v), want (100, 200)", p.X, p.Bottom())
	}
	if p.Power != PowerSmall || p.Lives != StartLives {
		t.Errorf("power %v lives %d", p.Power, p.Lives)
	}
	if _, ok := p.Inventory.Current(); ok {
		t.Error("new player should be bare-handed")
	}
}

func TestCollectCoinExtraLife(t *testing.T) {
	p := NewPlayer(1, "a", 0, 0)
	lives := 0
	for i := 0; i < 2*CoinsPerLife; i++ {
		if p.CollectCoin() {
			lives++
		}
	}
	if lives != 2 || p.Lives != StartLives+2 {
		t.Errorf("granted %d lives, total %d", lives, p.Lives)
	}
	if p.Score != 2*CoinsPerLife*CoinScore {
		t.Errorf("score = %d", p.Score)
	}
}

func TestHurtTiers(t *testing.T) {
	p := NewPlayer(1, "a", 0, 100)
	p.SetPower(PowerFire)

	if p.Hurt() {
		t.Fatal("fire player should not die from one hit")
	}
	if p.Power != PowerSmall || p.Invuln != HurtInvuln {
		t.Errorf("after hurt: power %v invuln %d", p.Power, p.Invuln)
	}
	if p.Bottom() != 100 {
		t.Errorf("shrinking should keep the feet in place, bottom = %v", p.Bottom())
	}

	if p.Hurt() {
		t.Error("invulnerable player should not take damage")
	}

	p.Invuln = 0
	if !p.Hurt() {
		t.Fatal("small player should die")
	}
	if !p.Dead || p.Lives != StartLives-1 {
		t.Errorf("dead=%v lives=%d", p.Dead, p.Lives)
	}
	if p.Hurt() {
		t.Error("dead player cannot be hurt again")
	}
}

func TestDieSpendsOneLife(t *testing.T) {
	p := NewPlayer(1, "a", 0, 0)
	p.Lives = 1
	p.Die()
	p.Die()
	if p.Lives != 0 {
		t.Errorf("lives = %d, want 0", p.Lives)
	}
	if p.DeathDone() {
		t.Error("death animation should still be running")
	}
	p.DeathTimer = 0
	if !p.DeathDone() {
		t.Error("death should be done once the timer runs out")
	}
}

func TestRespawn(t *testing.T) {
	p := NewPlayer(1, "a", 0, 0)
	p.SetPower(PowerBig)
	p.Die()
	p.Respawn(64, 320)
	if p.Dead || p.Power != PowerSmall {
		t.Errorf("respawn: dead=%v power=%v", p.Dead, p.Power)
	}
	if p.X != 64 || p.Bottom() != 320 {
		t.Errorf("respawned at (%v, %v)", p.X, p.Bottom())
	}
	if p.Invuln != HurtInvuln {
		t.Errorf("invuln = %d", p.Invuln)
	}
}

func TestApplyPowerUp(t *testing.T) {
	p := NewPlayer(1, "a", 0, 100)

	p.ApplyPowerUp(PickupMushroom)
	if p.Power != PowerBig || p.Score != PowerUpScore {
		t.Errorf("mushroom: power %v score %d", p.Power, p.Score)
	}
	if p.H != BigH || p.Bottom() != 100 {
		t.Errorf("grown body h=%v bottom=%v", p.H, p.Bottom())
	}

	p.ApplyPowerUp(PickupFlower)
	p.ApplyPowerUp(PickupMushroom)
	if p.Power != PowerFire {
		t.Errorf("mushroom should not downgrade fire, got %v", p.Power)
	}

	score := p.Score
	p.ApplyPowerUp(PickupOneUp)
	if p.Lives != StartLives+1 || p.Score != score {
		t.Errorf("1-up: lives %d score %d", p.Lives, p.Score)
	}
}

func TestPlayerJumpAndLand(t *testing.T) {
	g := floorGrid(10, 10)
	p := NewPlayer(1, "a", 64, 9*TileSize)
	p.Update(InputKeys{Slot: -1}, g)
	if !p.OnGround {
		t.Fatal("player should settle on the floor")
	}

	p.Update(InputKeys{Jump: true, Slot: -1}, g)
	if p.OnGround || p.VY >= 0 {
		t.Fatalf("jump did not launch: onGround=%v vy=%v", p.OnGround, p.VY)
	}
	if p.State != MoveJump {
		t.Errorf("state = %v, want jump", p.State)
	}

	for i := 0; i < 120 && !p.OnGround; i++ {
		p.Update(InputKeys{Slot: -1}, g)
	}
	if !p.OnGround || p.Bottom() != 9*TileSize {
		t.Errorf("player did not land, bottom = %v", p.Bottom())
	}
}

func TestPlayerHoldingJumpDoesNotRepeat(t *testing.T) {
	g := floorGrid(10, 10)
	p := NewPlayer(1, "a", 64, 9*TileSize)
	p.Update(InputKeys{Slot: -1}, g)

	jumps := 0
	for i := 0; i < 200; i++ {
		wasGround := p.OnGround
		p.Update(InputKeys{Jump: true, Slot: -1}, g)
		if wasGround && !p.OnGround {
			jumps++
		}
	}
	if jumps != 1 {
		t.Errorf("held jump fired %d times, want 1", jumps)
	}
}

func TestBounce(t *testing.T) {
	p := NewPlayer(1, "a", 0, 0)
	p.Bounce()
	if p.VY != StompBounce || p.StompGrace != StompGraceTime {
		t.Errorf("bounce vy=%v grace=%d", p.VY, p.StompGrace)
	}
	p.Input.Jump = true
	p.Bounce()
	if p.VY != StompBounceHeld {
		t.Errorf("held bounce vy=%v", p.VY)
	}
}

func TestApplySnapshotBlendsSmallErrors(t *testing.T) {
	p := NewPlayer(2, "guest", 100, 200)
	s := p.ToSnapshot()
	s.X += 10
	s.Score = 500

	p.ApplySnapshot(s, true)
	if p.X != 100 {
		t.Errorf("small error should not teleport, X = %v", p.X)
	}
	if p.corrX != 10 {
		t.Errorf("pending correction = %v, want 10", p.corrX)
	}
	if p.Score != 500 {
		t.Errorf("score not overwritten: %d", p.Score)
	}

	p.applyCorrection()
	if p.X != 100+10*BlendFactor {
		t.Errorf("first blend step X = %v", p.X)
	}
}

func TestApplySnapshotSnapsLargeErrors(t *testing.T) {
	p := NewPlayer(2, "guest", 100, 200)
	s := p.ToSnapshot()
	s.X += SnapThreshold + 50
	p.ApplySnapshot(s, true)
	if p.X != s.X {
		t.Errorf("large error should snap, X = %v want %v", p.X, s.X)
	}

	s.X = 120
	p.ApplySnapshot(s, false)
	if p.X != 120 || p.corrX != 0 {
		t.Errorf("unblended apply should snap, X = %v corr %v", p.X, p.corrX)
	}
}

func TestSnapshotInventoryNotAliased(t *testing.T) {
	p := NewPlayer(1, "a", 0, 0)
	p.Inventory.Add(WeaponGun, 20)
	s := p.ToSnapshot()
	s.Inventory[0].Uses = 1

	if p.Inventory.Slots[0].Uses != 20 {
		t.Error("snapshot aliases the live inventory")
	}

	q := NewPlayer(2, "b", 0, 0)
	q.ApplySnapshot(s, false)
	s.Inventory[0].Uses = 99
	if q.Inventory.Slots[0].Uses != 1 {
		t.Error("applied inventory aliases the snapshot")
	}
	if q.Inventory.Active != 0 {
		t.Errorf("active slot = %d", q.Inventory.Active)
	}
}

func TestResetProfile(t *testing.T) {
	p := NewPlayer(1, "a", 0, 0)
	p.Score, p.Coins, p.Lives = 900, 12, 1
	p.SetPower(PowerFire)
	p.Inventory.Add(WeaponSword, 30)
	p.ResetProfile()
	if p.Score != 0 || p.Coins != 0 || p.Lives != StartLives || p.Power != PowerSmall {
		t.Errorf("profile not reset: %+v", p.ToSnapshot())
	}
	if len(p.Inventory.Slots) != 0 {
		t.Error("inventory should be emptied")
	}
}
