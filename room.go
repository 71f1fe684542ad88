package main

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

const maxRooms = 100

var (
	ErrRoomFull     = errors.New("room is full")
	ErrRoomNotFound = errors.New("room not found")
	ErrTooManyRooms = errors.New("too many active rooms")
)

// Room pairs a host and a guest. Either slot may be empty while its owner
// reconnects; the room is dropped once both are.
type Room struct {
	ID        string
	Name      string
	passHash  []byte
	host      *Client
	guest     *Client
	hostName  string
	guestName string
}

func (r *Room) slot(name string) **Client {
	if name == SlotHost {
		return &r.host
	}
	return &r.guest
}

func (r *Room) empty() bool {
	return r.host == nil && r.guest == nil
}

// RoomManager handles creation, membership and lookup of rooms
type RoomManager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	byClient map[*Client]*Room
}

// NewRoomManager creates a new RoomManager
func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:    make(map[string]*Room),
		byClient: make(map[*Client]*Room),
	}
}

// Create opens a room with c as its host
func (rm *RoomManager) Create(c *Client, name string, passHash []byte) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.rooms) >= maxRooms {
		return nil, ErrTooManyRooms
	}
	rm.detach(c)
	r := &Room{
		ID:       uuid.NewString(),
		Name:     name,
		passHash: passHash,
		host:     c,
		hostName: name,
	}
	rm.rooms[r.ID] = r
	rm.byClient[c] = r
	return r, nil
}

// Lookup returns a room's passcode hash so the caller can check it outside the lock
func (rm *RoomManager) Lookup(id string) ([]byte, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r, ok := rm.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r.passHash, nil
}

// Join seats c in slot and returns the client already in the other slot
// (nil if absent) with its name. A guest join fails when the guest slot is
// taken; a token rejoin replaces a stale connection in its own slot.
func (rm *RoomManager) Join(id, slot string, c *Client, name string, rejoin bool) (other *Client, otherName string, err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	r, ok := rm.rooms[id]
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	seat := r.slot(slot)
	if *seat != nil && *seat != c && !rejoin {
		return nil, "", ErrRoomFull
	}
	if stale := *seat; stale != nil && stale != c {
		delete(rm.byClient, stale)
	}
	if cur := rm.byClient[c]; cur != nil && cur != r {
		rm.detach(c)
	}
	*seat = c
	rm.byClient[c] = r
	if slot == SlotHost {
		r.hostName = name
		return r.guest, r.guestName, nil
	}
	r.guestName = name
	return r.host, r.hostName, nil
}

// Leave frees c's slot and returns the room id and the remaining peer, if any
func (rm *RoomManager) Leave(c *Client) (string, *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	r := rm.byClient[c]
	if r == nil {
		return "", nil
	}
	rm.detach(c)
	if r.host != nil {
		return r.ID, r.host
	}
	return r.ID, r.guest
}

// detach removes c from its room and drops the room when it empties.
// Callers hold rm.mu.
func (rm *RoomManager) detach(c *Client) {
	r := rm.byClient[c]
	if r == nil {
		return
	}
	delete(rm.byClient, c)
	switch c {
	case r.host:
		r.host = nil
	case r.guest:
		r.guest = nil
	}
	if r.empty() {
		delete(rm.rooms, r.ID)
	}
}

// Peer returns the other participant of c's room and the room id
func (rm *RoomManager) Peer(c *Client) (*Client, string) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r := rm.byClient[c]
	if r == nil {
		return nil, ""
	}
	if r.host == c {
		return r.guest, r.ID
	}
	return r.host, r.ID
}

// Count returns the number of open rooms
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// ListRooms returns info about all open rooms
func (rm *RoomManager) ListRooms() []RoomInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	list := make([]RoomInfo, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		n := 0
		if r.host != nil {
			n++
		}
		if r.guest != nil {
			n++
		}
		list = append(list, RoomInfo{
			ID:      r.ID,
			Host:    r.hostName,
			Players: n,
			Locked:  len(r.passHash) > 0,
		})
	}
	return list
}

// Exists reports whether a room is open
func (rm *RoomManager) Exists(id string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, ok := rm.rooms[id]
	return ok
}
