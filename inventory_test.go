package main

import "testing"

func TestInventoryAddStacks(t *testing.T) {
	inv := NewInventory()
	inv.Add(WeaponGun, 20)
	inv.Add(WeaponSword, 30)
	inv.Add(WeaponGun, 5)

	if len(inv.Slots) != 2 {
		t.Fatalf("slots = %v, want 2", inv.Slots)
	}
	if inv.Slots[0].Uses != 25 {
		t.Errorf("stacked uses = %d, want 25", inv.Slots[0].Uses)
	}
	if inv.Active != 0 {
		t.Errorf("stacked slot should become active, got %d", inv.Active)
	}
}

func TestInventoryReplacesActiveWhenFull(t *testing.T) {
	inv := NewInventory()
	for k := WeaponGun; k < WeaponGun+MaxSlots; k++ {
		inv.Add(k, 1)
	}
	inv.Select(2)
	inv.Add(WeaponPencil, 8)

	if len(inv.Slots) != MaxSlots {
		t.Fatalf("slots = %d, want %d", len(inv.Slots), MaxSlots)
	}
	if inv.Slots[2] != (Slot{Kind: WeaponPencil, Uses: 8}) || inv.Active != 2 {
		t.Errorf("active slot not replaced: %+v active %d", inv.Slots, inv.Active)
	}

	inv.Select(-1)
	inv.Add(WeaponSword, 3)
	if inv.Slots[3] != (Slot{Kind: WeaponSword, Uses: 4}) || inv.Active != 3 {
		t.Errorf("stack expected on existing sword slot: %+v", inv.Slots)
	}
}

func TestInventoryBareHandsReplacement(t *testing.T) {
	inv := NewInventory()
	kinds := []WeaponKind{WeaponGun, WeaponRocket, WeaponGrenade, WeaponSword, WeaponGrapple}
	for _, k := range kinds {
		inv.Add(k, 1)
	}
	inv.Select(-1)
	inv.Add(WeaponPencil, 8)
	if inv.Slots[0].Kind != WeaponPencil || inv.Active != 0 {
		t.Errorf("full bare-handed inventory should replace slot 0: %+v", inv.Slots)
	}
}

func TestInventorySelect(t *testing.T) {
	inv := NewInventory()
	inv.Add(WeaponGun, 1)
	inv.Add(WeaponSword, 1)

	inv.Select(0)
	if s, ok := inv.Current(); !ok || s.Kind != WeaponGun {
		t.Errorf("current = %+v %v", s, ok)
	}
	inv.Select(5)
	if _, ok := inv.Current(); ok {
		t.Error("out of range select should mean bare hands")
	}
}

func TestInventoryConsume(t *testing.T) {
	inv := NewInventory()
	if inv.Consume() {
		t.Error("bare hands have nothing to consume")
	}
	inv.Add(WeaponRocket, 2)
	inv.Add(WeaponGun, 1)
	inv.Select(0)

	if !inv.Consume() || inv.Slots[0].Uses != 1 {
		t.Fatalf("consume: %+v", inv.Slots)
	}
	inv.Consume()
	if len(inv.Slots) != 1 || inv.Slots[0].Kind != WeaponGun {
		t.Errorf("empty slot should be dropped: %+v", inv.Slots)
	}
	if inv.Active != -1 {
		t.Errorf("active = %d, want bare hands", inv.Active)
	}
}

func TestInventoryClone(t *testing.T) {
	inv := NewInventory()
	inv.Add(WeaponGun, 3)
	c := inv.Clone()
	c.Slots[0].Uses = 0
	if inv.Slots[0].Uses != 3 {
		t.Error("clone aliases the original")
	}
	if empty := NewInventory().Clone(); empty.Slots != nil || empty.Active != -1 {
		t.Errorf("empty clone = %+v", empty)
	}
}

func TestWeaponKindString(t *testing.T) {
	if WeaponGrapple.String() != "grapple" {
		t.Errorf("got %s", WeaponGrapple.String())
	}
	if WeaponKind(99).String() != "unknown" {
		t.Error("unknown kind should say so")
	}
}
