package main

import (
	"math"
	"testing"
)

func TestPowerUpEmergesThenWalks(t *testing.T) {
	g := floorGrid(20, 10)
	p := NewEmergingPowerUp(1, PickupMushroom, 5, 8)
	startY := p.Y
	if p.Collectible() {
		t.Fatal("emerging power-up should not be collectible")
	}
	for i := 0; i < EmergeTicks; i++ {
		p.Update(g)
	}
	if !p.Collectible() {
		t.Fatal("power-up should be collectible once out")
	}
	if math.Abs(startY-p.Y-PowerUpSize) > 1e-6 {
		t.Errorf("rose %v, want %v", startY-p.Y, PowerUpSize)
	}

	x := p.X
	for i := 0; i < 10; i++ {
		p.Update(g)
	}
	if p.X <= x {
		t.Errorf("mushroom should walk right, x %v -> %v", x, p.X)
	}
}

func TestFlowerStaysPut(t *testing.T) {
	g := floorGrid(20, 10)
	p := NewEmergingPowerUp(1, PickupFlower, 5, 8)
	for i := 0; i < EmergeTicks; i++ {
		p.Update(g)
	}
	x := p.X
	for i := 0; i < 10; i++ {
		p.Update(g)
	}
	if p.X != x {
		t.Errorf("flower moved from %v to %v", x, p.X)
	}
}

func TestPickupFallsOutOfLevel(t *testing.T) {
	g := NewTileGrid(10, 5)
	c := NewCrate(1, 3, 1, WeaponRocket)
	for i := 0; i < 200 && !c.Dead; i++ {
		c.Update(g)
	}
	if !c.Dead {
		t.Error("crate below the level should be removed")
	}
}

func TestPickupSnapshots(t *testing.T) {
	c := NewCrate(7, 3, 4, WeaponGrapple)
	m, ok := pickupFromSnapshot(c.ToSnapshot())
	if !ok || m.Kind != PickupCrate || m.Weapon != WeaponGrapple || m.W != CrateSize {
		t.Errorf("crate mirror = %+v", m)
	}
	if _, ok := pickupFromSnapshot(PowerUpSnapshot{ID: 1, Type: "coin"}); ok {
		t.Error("coins are never created from snapshots")
	}
	if _, ok := pickupFromSnapshot(PowerUpSnapshot{ID: 1, Type: "star"}); ok {
		t.Error("unknown kinds are dropped")
	}
}
