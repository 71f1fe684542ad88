package main

import "testing"

func findTile(g *TileGrid, k TileKind) (int, int, bool) {
	for cy := 0; cy < g.H; cy++ {
		for cx := 0; cx < g.W; cx++ {
			if g.At(cx, cy) == k {
				return cx, cy, true
			}
		}
	}
	return 0, 0, false
}

func enemyIDs(list []*Enemy) map[uint32]bool {
	out := make(map[uint32]bool, len(list))
	for _, e := range list {
		out[e.ID] = true
	}
	return out
}

func TestReconcile(t *testing.T) {
	type item struct{ id, v int }
	local := []*item{{1, 0}, {2, 0}, {3, 0}}
	remote := []item{{3, 30}, {1, 10}, {4, 40}, {5, -1}}

	got := reconcile(local, remote,
		func(e *item) uint32 { return uint32(e.id) },
		func(s item) uint32 { return uint32(s.id) },
		func(e *item, s item) { e.v = s.v },
		func(s item) (*item, bool) { return &item{s.id, s.v}, s.v >= 0 })

	want := []item{{3, 30}, {1, 10}, {4, 40}}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i, w := range want {
		if *got[i] != w {
			t.Errorf("item %d = %+v, want %+v", i, *got[i], w)
		}
	}
	if got[1] != local[0] {
		t.Error("known ids should keep their local instance")
	}
}

func TestClientReconcilesHostSnapshot(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)

	if len(c.enemies) != len(host.enemies) {
		t.Fatalf("client enemies %d, host %d", len(c.enemies), len(host.enemies))
	}

	// host loses one enemy, gains another, spends a block and a coin
	victim := host.enemies[0].ID
	host.enemies = append(host.enemies[1:], NewEnemy(123456, EnemyTurret, 5, 5))
	cx, cy, ok := findTile(host.level.Grid, TileQuestion)
	if !ok {
		t.Fatal("level has no question block")
	}
	host.level.Grid.Hit(cx, cy, false)
	host.coins[0].Dead = true

	c.Inbox().Push(mustEncode(t, MsgState, host.Snapshot()))
	c.Tick()

	if findEnemy(c.enemies, victim) != nil {
		t.Error("enemy missing from the snapshot should be removed")
	}
	if e := findEnemy(c.enemies, 123456); e == nil || e.Kind != EnemyTurret {
		t.Error("unknown enemy should be created from the snapshot")
	}
	if c.level.Grid.At(cx, cy) != TileSpent {
		t.Error("tile change should be applied")
	}
	if !findPickup(c.coins, host.coins[0].ID).Dead {
		t.Error("coin should mirror the host's dead flag")
	}
}

func TestClientIgnoresStateForOtherLevel(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	n := len(c.enemies)

	st := host.Snapshot()
	st.Level = 2
	st.Enemies = nil
	c.Inbox().Push(mustEncode(t, MsgState, st))
	c.Tick()

	if len(c.enemies) != n {
		t.Errorf("enemies = %d, want %d", len(c.enemies), n)
	}
}

func TestClientFollowsHostEndPhase(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	st := host.Snapshot()
	st.Phase = PhaseWin
	c.Inbox().Push(mustEncode(t, MsgState, st))
	c.Tick()
	if c.HUD().Phase != PhaseWin {
		t.Errorf("phase = %v", c.HUD().Phase)
	}
	// only the host advances
	for i := 0; i < WinDelay+1; i++ {
		c.Tick()
	}
	if c.level.Index != 0 {
		t.Error("client must wait for the host's RESTART")
	}
}

func TestDuplicateSeqIgnored(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	p := c.players[GuestPlayerID]

	c.applyEvent(EventMsg{Event: EvCoin, Seq: 5, Player: GuestPlayerID, Score: 200, Coins: 1, Lives: 3})
	c.applyEvent(EventMsg{Event: EvCoin, Seq: 5, Player: GuestPlayerID, Score: 999, Coins: 9, Lives: 3})
	if p.Score != 200 || p.Coins != 1 {
		t.Errorf("score %d coins %d", p.Score, p.Coins)
	}
}

func TestCratePickupIdempotent(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	crate := c.powerUps[0]
	ev := EventMsg{Event: EvCratePickup, Seq: 1, Player: GuestPlayerID, Target: crate.ID,
		Inventory: []Slot{{Kind: WeaponGun, Uses: 20}}, Slot: 0}

	c.applyEvent(ev)
	ev.Seq = 2 // a resend under a new sequence number
	c.applyEvent(ev)

	inv := c.players[GuestPlayerID].Inventory
	if len(inv.Slots) != 1 || inv.Slots[0].Uses != 20 || inv.Active != 0 {
		t.Errorf("inventory = %+v", inv)
	}
	if !crate.Dead {
		t.Error("crate should be consumed")
	}
}

func TestSnapshotKeepsClientAmmo(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	self := c.players[GuestPlayerID]
	c.applyEvent(EventMsg{Event: EvCratePickup, Seq: 1, Player: GuestPlayerID, Target: c.powerUps[0].ID,
		Inventory: []Slot{{Kind: WeaponGun, Uses: 20}}, Slot: 0})
	if !self.Inventory.Consume() {
		t.Fatal("guest should be able to fire")
	}

	// the host has not seen the shot yet
	guest := host.players[GuestPlayerID]
	guest.Active = true
	guest.Inventory.Add(WeaponGun, 20)
	host.players[HostPlayerID].Inventory.Add(WeaponRocket, 5)
	c.Inbox().Push(mustEncode(t, MsgState, host.Snapshot()))
	c.Tick()

	if uses := self.Inventory.Slots[0].Uses; uses != 19 {
		t.Errorf("stale snapshot set guest uses to %d", uses)
	}
	if inv := c.players[HostPlayerID].Inventory; len(inv.Slots) != 1 || inv.Slots[0].Kind != WeaponRocket {
		t.Errorf("host mirror inventory = %+v", inv)
	}
}

func TestBlockHitIdempotent(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	cx, cy, _ := findTile(c.level.Grid, TileQuestion)

	c.applyEvent(EventMsg{Event: EvBlockHit, Seq: 1, CX: cx, CY: cy, Tile: TileSpent})
	c.applyEvent(EventMsg{Event: EvBlockHit, Seq: 2, CX: cx, CY: cy, Tile: TileSpent})
	if n := len(c.level.Grid.Changes()); n != 1 {
		t.Errorf("changes = %d, want 1", n)
	}
}

func TestClientAppliesHurt(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	p := c.players[GuestPlayerID]

	c.applyEvent(EventMsg{Event: EvHurt, Seq: 1, Player: GuestPlayerID, Dead: true, Lives: 2})
	if !p.Dead || p.Lives != 2 {
		t.Errorf("dead %v lives %d", p.Dead, p.Lives)
	}
}

func TestHostIgnoresHostOnlyEvents(t *testing.T) {
	g, _ := startedGame(t, RoleHost, "host", nil)
	g.PeerJoined("bob")
	guest := g.players[GuestPlayerID]

	g.applyEvent(EventMsg{Event: EvHurt, Seq: 1, Player: GuestPlayerID, Dead: true})
	g.applyEvent(EventMsg{Event: EvWin, Seq: 2})
	if guest.Dead || g.match.Phase != PhasePlaying {
		t.Error("a client cannot decide hurt or win outcomes")
	}

	g.applyEvent(EventMsg{Event: EvChat, Seq: 3, Name: "bob", Text: "hi"})
	if lines := g.Chat(); len(lines) != 1 || lines[0].From != "bob" {
		t.Errorf("chat = %+v", lines)
	}
}

func TestPowerUpSpawnOnce(t *testing.T) {
	host, _ := startedGame(t, RoleHost, "host", nil)
	c, _ := loadedClient(t, host)
	n := len(c.powerUps)
	snap := PowerUpSnapshot{ID: 777, Type: PickupMushroom.String(), X: 64, Y: 64}

	c.applyEvent(EventMsg{Event: EvPowerUpSpawn, Seq: 1, PowerUp: &snap})
	c.applyEvent(EventMsg{Event: EvPowerUpSpawn, Seq: 2, PowerUp: &snap})
	if len(c.powerUps) != n+1 {
		t.Errorf("power-ups = %d, want %d", len(c.powerUps), n+1)
	}
}

func TestRestartResetsSeen(t *testing.T) {
	c := NewGame(RoleClient, "guest", nil)
	c.Inbox().Push(mustEncode(t, MsgRestart, RestartMsg{Level: 0}))
	c.Tick()
	c.applyEvent(EventMsg{Event: EvChat, Seq: 1, Text: "a"})

	c.Inbox().Push(mustEncode(t, MsgRestart, RestartMsg{Level: 1}))
	c.Inbox().Push(mustEncode(t, MsgEvent, EventMsg{Event: EvChat, Seq: 1, Text: "b"}))
	c.Tick()
	if lines := c.Chat(); len(lines) != 2 {
		t.Errorf("chat = %+v, a restart should forget applied sequence numbers", lines)
	}
}

func TestHostAndClientStayInSync(t *testing.T) {
	host := NewGame(RoleHost, "host", nil)
	client := NewGame(RoleClient, "guest", nil)
	host.SetSender(pipeSender{to: client.Inbox()})
	client.SetSender(pipeSender{to: host.Inbox()})
	if err := host.Start(0); err != nil {
		t.Fatal(err)
	}
	host.PeerJoined("guest")
	client.PeerJoined("host")

	for i := 0; i < 30; i++ {
		host.Tick()
		client.Tick()
	}

	if !client.Loaded() || client.level.Index != host.level.Index {
		t.Fatal("client did not follow the host's level")
	}
	he, ce := enemyIDs(host.enemies), enemyIDs(client.enemies)
	if len(he) != len(ce) {
		t.Fatalf("host %d enemies, client %d", len(he), len(ce))
	}
	for id := range he {
		if !ce[id] {
			t.Errorf("client is missing enemy %d", id)
		}
	}
	// the host simulates the guest from relayed input
	if !host.players[GuestPlayerID].Active {
		t.Error("host should simulate the guest")
	}
	if host.HUD().Frame != 30 || client.HUD().Frame != 30 {
		t.Errorf("frames host %d client %d", host.HUD().Frame, client.HUD().Frame)
	}
}

func TestSeenSetEvicts(t *testing.T) {
	s := newSeenSet(2)
	for _, seq := range []uint32{1, 2, 3} {
		if !s.Add(seq) {
			t.Fatalf("seq %d reported as seen", seq)
		}
	}
	if s.Add(3) {
		t.Error("recent seq should be remembered")
	}
	if !s.Add(1) {
		t.Error("evicted seq should be accepted again")
	}
	s.Reset()
	if !s.Add(3) {
		t.Error("reset should forget everything")
	}
}

func TestIDAllocatorRanges(t *testing.T) {
	a := NewIDAllocator(runtimeIDBase(RoleHost))
	if a.Next() != hostIDBase || a.Next() != hostIDBase+1 {
		t.Error("host ids should count up from the host base")
	}
	if runtimeIDBase(RoleSolo) != hostIDBase || runtimeIDBase(RoleClient) != guestIDBase {
		t.Error("unexpected runtime id bases")
	}
}
