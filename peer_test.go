package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// startPeer runs p until the test ends and returns a channel with Run's result
func startPeer(t *testing.T, p *Peer) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		done <- p.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Error("peer did not stop")
		}
	})
	return done
}

func TestPeersPlayTogether(t *testing.T) {
	_, wsURL := startTestServer(t)

	hostGame := NewGame(RoleHost, "alice", nil)
	if err := hostGame.Start(0); err != nil {
		t.Fatal(err)
	}
	hostPeer := NewPeer(hostGame, PeerConfig{URL: wsURL, Name: "alice"})
	startPeer(t, hostPeer)
	waitFor(t, "room", func() bool {
		room, _, _ := hostPeer.Room()
		return room != ""
	})
	room, _, slot := hostPeer.Room()
	if slot != SlotHost {
		t.Fatalf("host slot = %q", slot)
	}

	guestGame := NewGame(RoleClient, "bob", nil)
	guestPeer := NewPeer(guestGame, PeerConfig{URL: wsURL, Room: room, Name: "bob"})
	startPeer(t, guestPeer)

	waitFor(t, "guest to load the host's level", func() bool {
		hud := guestGame.HUD()
		return guestGame.Loaded() && hud.Role == RoleClient && hud.Peer && hud.Phase == PhasePlaying
	})
	waitFor(t, "host to see the guest", func() bool {
		hud := hostGame.HUD()
		return hud.Peer && hud.Role == RoleHost
	})
	if _, _, slot := guestPeer.Room(); slot != SlotGuest {
		t.Errorf("guest slot = %q", slot)
	}
}

func TestPeerOffline(t *testing.T) {
	g := NewGame(RoleSolo, "solo", nil)
	if err := g.Start(0); err != nil {
		t.Fatal(err)
	}
	p := NewPeer(g, PeerConfig{})
	startPeer(t, p)
	waitFor(t, "ticks", func() bool { return g.HUD().Frame > 5 })
	if err := p.Send([]byte{1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("send err = %v", err)
	}
}

func TestPeerPaused(t *testing.T) {
	g := NewGame(RoleSolo, "solo", nil)
	g.Start(0)
	p := NewPeer(g, PeerConfig{})
	p.SetVisible(false)
	startPeer(t, p)
	time.Sleep(100 * time.Millisecond)
	if f := g.HUD().Frame; f != 0 {
		t.Errorf("hidden peer ticked %d frames", f)
	}
	p.SetVisible(true)
	waitFor(t, "ticks after resume", func() bool { return g.HUD().Frame > 0 })
}

func TestPeerFirstJoinRefused(t *testing.T) {
	_, wsURL := startTestServer(t)
	g := NewGame(RoleClient, "bob", nil)
	p := NewPeer(g, PeerConfig{URL: wsURL, Room: "missing", Name: "bob"})
	done := startPeer(t, p)

	select {
	case err := <-done:
		var refused *RelayError
		if !errors.As(err, &refused) || refused.Msg != ErrRoomNotFound.Error() {
			t.Fatalf("err = %v, want relay refusal", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run should stop when the first join is refused")
	}
	if g.Role() != RoleSolo || !g.Loaded() {
		t.Error("refused guest should fall back to solo play")
	}
}
