package main

// Reserved network ids
const (
	HostPlayerID  uint32 = 1
	GuestPlayerID uint32 = 2

	levelIDBase = 1000
	hostIDBase  = 100000
	guestIDBase = 1 << 24
)

// IDAllocator mints network ids. Each instance owns its own allocator so ids
// never leak across sessions or tests.
type IDAllocator struct {
	next uint32
}

// NewIDAllocator returns an allocator whose first id is seed
func NewIDAllocator(seed uint32) *IDAllocator {
	return &IDAllocator{next: seed}
}

// Next returns a fresh id
func (a *IDAllocator) Next() uint32 {
	id := a.next
	a.next++
	return id
}

// runtimeIDBase picks the runtime id range for a role so both instances can
// spawn projectiles and drawings without colliding.
func runtimeIDBase(r Role) uint32 {
	if r == RoleClient {
		return guestIDBase
	}
	return hostIDBase
}

// seenSet remembers recently applied event sequence numbers
type seenSet struct {
	seen  map[uint32]struct{}
	order []uint32
	limit int
}

func newSeenSet(limit int) *seenSet {
	return &seenSet{seen: make(map[uint32]struct{}, limit), limit: limit}
}

// Add records seq and reports whether it was new
func (s *seenSet) Add(seq uint32) bool {
	if _, ok := s.seen[seq]; ok {
		return false
	}
	s.seen[seq] = struct{}{}
	s.order = append(s.order, seq)
	if len(s.order) > s.limit {
		old := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, old)
	}
	return true
}

func (s *seenSet) Reset() {
	s.seen = make(map[uint32]struct{}, s.limit)
	s.order = s.order[:0]
}
