package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	TickRate        = 60
	statusEvery     = 5 * TickRate
	reconnectMin    = 500 * time.Millisecond
	reconnectMax    = 10 * time.Second
	peerSendBuf     = 256
	peerDialTimeout = 10 * time.Second
)

var (
	ErrNotConnected = errors.New("not connected to relay")
	ErrBackpressure = errors.New("send buffer full")
)

// RelayError is an error reply from the relay
type RelayError struct {
	Msg string
}

func (e *RelayError) Error() string {
	return "relay: " + e.Msg
}

// PeerConfig says where and how a peer meets its partner
type PeerConfig struct {
	URL      string // relay websocket URL; empty plays offline
	Room     string // room to join; empty creates one
	Name     string
	Passcode string
}

// Peer drives one Game: it ticks the simulation at TickRate and carries its
// traffic to the relay. It is the Game's Sender.
type Peer struct {
	cfg    PeerConfig
	game   *Game
	dialer *websocket.Dialer

	mu    sync.Mutex
	out   chan outFrame // nil while disconnected
	room  string
	token string
	slot  string

	visible atomic.Bool
	peerUp  bool // owned by the connection goroutine
}

// NewPeer creates a peer for game
func NewPeer(game *Game, cfg PeerConfig) *Peer {
	p := &Peer{
		cfg:    cfg,
		game:   game,
		dialer: &websocket.Dialer{HandshakeTimeout: peerDialTimeout},
	}
	p.visible.Store(true)
	return p
}

// Run ticks the game and keeps the relay connection up until ctx is done or
// the relay refuses the first join
func (p *Peer) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return p.tickLoop(ctx)
	})
	if p.cfg.URL != "" {
		eg.Go(func() error {
			return p.connectLoop(ctx)
		})
	}
	return eg.Wait()
}

// SetVisible pauses or resumes ticking. Skipped ticks are not replayed.
func (p *Peer) SetVisible(v bool) {
	if p.visible.Swap(v) != v {
		log.WithField("visible", v).Debug("peer visibility changed")
	}
}

// Send queues a binary game frame for the relay
func (p *Peer) Send(data []byte) error {
	p.mu.Lock()
	out := p.out
	p.mu.Unlock()
	if out == nil {
		return ErrNotConnected
	}
	select {
	case out <- outFrame{binary: true, data: data}:
		return nil
	default:
		return ErrBackpressure
	}
}

// Room returns the room id, token and slot of the current seat
func (p *Peer) Room() (room, token, slot string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room, p.token, p.slot
}

func (p *Peer) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()
	var n int
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.visible.Load() {
				continue
			}
			p.game.Tick()
			if n++; n%statusEvery == 0 {
				hud := p.game.HUD()
				log.WithFields(log.Fields{
					"levelIndex": hud.Level, "phase": hud.Phase, "role": hud.Role,
					"score": hud.Score, "coins": hud.Coins, "lives": hud.Lives, "peer": hud.Peer,
				}).Debug("status")
			}
		}
	}
}

// connectLoop reconnects with backoff. After the first seat it rejoins with
// the room token; a refused rejoin leaves the game solo.
func (p *Peer) connectLoop(ctx context.Context) error {
	backoff := reconnectMin
	for {
		seated, err := p.session(ctx)
		p.dropPeer()
		if ctx.Err() != nil {
			return nil
		}
		var refused *RelayError
		if errors.As(err, &refused) {
			if _, token, _ := p.Room(); token == "" {
				return err
			}
			log.WithError(err).Warn("rejoin refused, continuing solo")
			return nil
		}
		if seated {
			backoff = reconnectMin
		}
		log.WithError(err).WithField("retry", backoff).Warn("relay connection lost")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, reconnectMax)
	}
}

// session runs one relay connection and reports whether it got seated
func (p *Peer) session(ctx context.Context) (bool, error) {
	conn, _, err := p.dialer.DialContext(ctx, p.cfg.URL, nil)
	if err != nil {
		return false, fmt.Errorf("dial relay: %w", err)
	}
	defer conn.Close()

	hello, err := p.hello()
	if err != nil {
		return false, err
	}
	out := make(chan outFrame, peerSendBuf)
	out <- outFrame{data: hello}
	p.mu.Lock()
	p.out = out
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.out = nil
		p.mu.Unlock()
	}()

	var seated atomic.Bool
	eg, sctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return p.writeLoop(sctx, conn, out)
	})
	eg.Go(func() error {
		return p.readLoop(conn, &seated)
	})
	eg.Go(func() error {
		<-sctx.Done()
		conn.Close()
		return nil
	})
	err = eg.Wait()
	return seated.Load(), err
}

// hello is the first control message: a token rejoin, a join or a create
func (p *Peer) hello() ([]byte, error) {
	room, token, _ := p.Room()
	switch {
	case token != "":
		return EncodeControl(MsgJoin, JoinMsg{Room: room, Name: p.cfg.Name, Token: token})
	case p.cfg.Room != "":
		return EncodeControl(MsgJoin, JoinMsg{Room: p.cfg.Room, Name: p.cfg.Name, Passcode: p.cfg.Passcode})
	default:
		return EncodeControl(MsgCreate, CreateMsg{Name: p.cfg.Name, Passcode: p.cfg.Passcode})
	}
}

func (p *Peer) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan outFrame) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case f := <-out:
			kind := websocket.TextMessage
			if f.binary {
				kind = websocket.BinaryMessage
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(kind, f.data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// readLoop stages game frames into the inbox and handles control inline, so
// a peer_up is always applied before the frames that follow it
func (p *Peer) readLoop(conn *websocket.Conn, seated *atomic.Bool) error {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	inbox := p.game.Inbox()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if kind == websocket.BinaryMessage {
			if err := inbox.Push(data); err != nil {
				log.WithError(err).Debug("dropped game frame")
			}
			continue
		}
		if err := p.handleControl(data, seated); err != nil {
			return err
		}
	}
}

func (p *Peer) handleControl(data []byte, seated *atomic.Bool) error {
	env, err := DecodeControl(data)
	if err != nil {
		log.WithError(err).Debug("dropped control frame")
		return nil
	}
	switch env.T {
	case MsgCreated:
		msg, err := DecodeControlPayload[CreatedMsg](env)
		if err != nil {
			return err
		}
		p.seat(msg.Room, msg.Token, SlotHost)
		seated.Store(true)
		log.WithField("room", msg.Room).Info("room created, waiting for a partner")
	case MsgJoined:
		msg, err := DecodeControlPayload[JoinedMsg](env)
		if err != nil {
			return err
		}
		p.seat(msg.Room, msg.Token, msg.Role)
		seated.Store(true)
		log.WithFields(log.Fields{"room": msg.Room, "slot": msg.Role}).Info("joined room")
	case MsgPeerUp:
		msg, _ := DecodeControlPayload[PeerMsg](env)
		p.peerJoined(msg.Name)
	case MsgPeerDown:
		log.Info("partner left")
		p.dropPeer()
	case MsgError:
		msg, _ := DecodeControlPayload[ErrorMsg](env)
		if !seated.Load() {
			return &RelayError{Msg: msg.Msg}
		}
		log.WithField("msg", msg.Msg).Warn("relay error")
	default:
		log.WithField("type", env.T).Debug("unknown control message")
	}
	return nil
}

func (p *Peer) seat(room, token, slot string) {
	p.mu.Lock()
	p.room, p.token, p.slot = room, token, slot
	p.mu.Unlock()
}

// peerJoined hands the game to the network: the host becomes authoritative
// for both, the guest goes back to mirroring and waits for RESTART
func (p *Peer) peerJoined(name string) {
	_, _, slot := p.Room()
	role := RoleHost
	if slot == SlotGuest {
		role = RoleClient
	}
	p.peerUp = true
	p.game.SetSender(p)
	p.game.SetRole(role)
	p.game.PeerJoined(name)
	log.WithFields(log.Fields{"partner": name, "role": role}).Info("partner connected")
}

// dropPeer promotes the game to solo after the partner or the relay is lost
func (p *Peer) dropPeer() {
	if p.peerUp {
		p.peerUp = false
		p.game.PeerLeft()
	}
	p.game.SetSender(nil)
	p.game.SetRole(RoleSolo)
	if !p.game.Loaded() {
		if err := p.game.Start(0); err != nil {
			log.WithError(err).Error("start solo")
		}
	}
}
