package main

import (
	"errors"
	"testing"
)

func TestRoomCreateJoinLeave(t *testing.T) {
	rm := NewRoomManager()
	host, guest := &Client{}, &Client{}

	r, err := rm.Create(host, "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !rm.Exists(r.ID) || rm.Count() != 1 {
		t.Fatal("room should be open")
	}

	other, name, err := rm.Join(r.ID, SlotGuest, guest, "bob", false)
	if err != nil {
		t.Fatal(err)
	}
	if other != host || name != "alice" {
		t.Errorf("guest sees %p %q", other, name)
	}
	if peer, id := rm.Peer(host); peer != guest || id != r.ID {
		t.Error("host should see the guest as its peer")
	}

	id, left := rm.Leave(host)
	if id != r.ID || left != guest {
		t.Errorf("leave = %q %p", id, left)
	}
	if !rm.Exists(r.ID) {
		t.Error("room should survive while the guest remains")
	}
	if id, left = rm.Leave(guest); id != r.ID || left != nil {
		t.Errorf("leave = %q %p", id, left)
	}
	if rm.Exists(r.ID) || rm.Count() != 0 {
		t.Error("empty room should be dropped")
	}
	if id, _ := rm.Leave(guest); id != "" {
		t.Error("leaving twice should be a no-op")
	}
}

func TestRoomFullAndRejoin(t *testing.T) {
	rm := NewRoomManager()
	host, guest, late := &Client{}, &Client{}, &Client{}
	r, _ := rm.Create(host, "alice", nil)
	rm.Join(r.ID, SlotGuest, guest, "bob", false)

	if _, _, err := rm.Join(r.ID, SlotGuest, late, "eve", false); !errors.Is(err, ErrRoomFull) {
		t.Errorf("err = %v, want room full", err)
	}

	// a token rejoin replaces the stale connection in its slot
	other, _, err := rm.Join(r.ID, SlotGuest, late, "bob", true)
	if err != nil || other != host {
		t.Fatalf("rejoin = %p, %v", other, err)
	}
	if peer, _ := rm.Peer(host); peer != late {
		t.Error("host should now see the new connection")
	}
	if id, _ := rm.Leave(guest); id != "" {
		t.Error("stale connection should no longer hold a slot")
	}
}

func TestRoomNotFound(t *testing.T) {
	rm := NewRoomManager()
	if _, _, err := rm.Join("missing", SlotGuest, &Client{}, "bob", false); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("join err = %v", err)
	}
	if _, err := rm.Lookup("missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("lookup err = %v", err)
	}
}

func TestRoomLimit(t *testing.T) {
	rm := NewRoomManager()
	for i := 0; i < maxRooms; i++ {
		if _, err := rm.Create(&Client{}, "p", nil); err != nil {
			t.Fatalf("room %d: %v", i, err)
		}
	}
	if _, err := rm.Create(&Client{}, "p", nil); !errors.Is(err, ErrTooManyRooms) {
		t.Errorf("err = %v, want too many rooms", err)
	}
}

func TestCreateMovesClientOutOfOldRoom(t *testing.T) {
	rm := NewRoomManager()
	c := &Client{}
	first, _ := rm.Create(c, "a", nil)
	second, _ := rm.Create(c, "a", nil)
	if rm.Exists(first.ID) || !rm.Exists(second.ID) {
		t.Error("a client holds one room at a time")
	}
}

func TestListRooms(t *testing.T) {
	rm := NewRoomManager()
	hash, _ := HashPasscode("1234")
	locked, _ := rm.Create(&Client{}, "alice", hash)
	open, _ := rm.Create(&Client{}, "bob", nil)
	rm.Join(open.ID, SlotGuest, &Client{}, "carol", false)

	byID := make(map[string]RoomInfo)
	for _, info := range rm.ListRooms() {
		byID[info.ID] = info
	}
	if info := byID[locked.ID]; !info.Locked || info.Players != 1 || info.Host != "alice" {
		t.Errorf("locked room = %+v", info)
	}
	if info := byID[open.ID]; info.Locked || info.Players != 2 {
		t.Errorf("open room = %+v", info)
	}
	if h, _ := rm.Lookup(locked.ID); len(h) == 0 {
		t.Error("lookup should return the passcode hash")
	}
}
