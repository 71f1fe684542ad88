package main

// WeaponKind identifies a weapon carried in an inventory slot
type WeaponKind uint8

const (
	WeaponGun WeaponKind = iota
	WeaponRocket
	WeaponGrenade
	WeaponSword
	WeaponGrapple
	WeaponPencil
	weaponKindCount
)

const MaxSlots = 5

type weaponDef struct {
	Name     string
	Uses     int // uses granted by one crate
	Cooldown int // ticks between uses
}

var weaponDefs = [weaponKindCount]weaponDef{
	WeaponGun:     {Name: "gun", Uses: 20, Cooldown: 8},
	WeaponRocket:  {Name: "rocket", Uses: 5, Cooldown: 40},
	WeaponGrenade: {Name: "grenade", Uses: 6, Cooldown: 30},
	WeaponSword:   {Name: "sword", Uses: 30, Cooldown: 18},
	WeaponGrapple: {Name: "grapple", Uses: 10, Cooldown: 20},
	WeaponPencil:  {Name: "pencil", Uses: 8, Cooldown: 10},
}

func (k WeaponKind) String() string {
	if k >= weaponKindCount {
		return "unknown"
	}
	return weaponDefs[k].Name
}

// Slot is one inventory entry
type Slot struct {
	Kind WeaponKind `msgpack:"kind"`
	Uses int        `msgpack:"uses"`
}

// Inventory holds up to MaxSlots weapons, Active is -1 when none is selected
type Inventory struct {
	Slots  []Slot
	Active int
}

// NewInventory returns an empty inventory
func NewInventory() Inventory {
	return Inventory{Active: -1}
}

// Add stacks uses onto a matching slot, fills a free slot, or replaces the
// active slot when full. The new or stacked slot becomes active.
func (inv *Inventory) Add(kind WeaponKind, uses int) {
	for i := range inv.Slots {
		if inv.Slots[i].Kind == kind {
			inv.Slots[i].Uses += uses
			inv.Active = i
			return
		}
	}
	if len(inv.Slots) < MaxSlots {
		inv.Slots = append(inv.Slots, Slot{Kind: kind, Uses: uses})
		inv.Active = len(inv.Slots) - 1
		return
	}
	i := inv.Active
	if i < 0 {
		i = 0
	}
	inv.Slots[i] = Slot{Kind: kind, Uses: uses}
	inv.Active = i
}

// Select switches the active slot; out of range selects bare hands
func (inv *Inventory) Select(i int) {
	if i < 0 || i >= len(inv.Slots) {
		inv.Active = -1
		return
	}
	inv.Active = i
}

// Current returns the active slot
func (inv *Inventory) Current() (Slot, bool) {
	if inv.Active < 0 || inv.Active >= len(inv.Slots) {
		return Slot{}, false
	}
	return inv.Slots[inv.Active], true
}

// Consume spends one use of the active weapon and drops the slot when empty
func (inv *Inventory) Consume() bool {
	if inv.Active < 0 || inv.Active >= len(inv.Slots) {
		return false
	}
	inv.Slots[inv.Active].Uses--
	if inv.Slots[inv.Active].Uses <= 0 {
		inv.Slots = append(inv.Slots[:inv.Active], inv.Slots[inv.Active+1:]...)
		inv.Active = -1
	}
	return true
}

// Clone returns a deep copy (snapshots must not alias live slices)
func (inv Inventory) Clone() Inventory {
	out := Inventory{Active: inv.Active}
	if len(inv.Slots) > 0 {
		out.Slots = append([]Slot(nil), inv.Slots...)
	}
	return out
}
