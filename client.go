package main

import (
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 64 * 1024
	sendBufSize       = 256
	maxMessagesPerSec = 240
	maxNameLen        = 16
)

// outFrame is one queued websocket write
type outFrame struct {
	binary bool
	data   []byte
}

// Client is one peer connected to the relay
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan outFrame
	remoteAddr string
	name       string
	slot       string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan outFrame, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection. Text frames are
// relay control; binary frames are game traffic for the room peer.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		if msgType == websocket.BinaryMessage {
			c.forward(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind := websocket.TextMessage
			if frame.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, frame.data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendControl sends a JSON control message to the peer
func (c *Client) SendControl(t string, payload interface{}) {
	data, err := EncodeControl(t, payload)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.enqueue(outFrame{data: data})
}

// SendBinary queues a game frame for the peer
func (c *Client) SendBinary(data []byte) {
	c.enqueue(outFrame{binary: true, data: data})
}

func (c *Client) enqueue(f outFrame) {
	// send may already be closed by the hub
	defer func() { recover() }()
	select {
	case c.send <- f:
	default:
		// Client too slow, drop message
	}
}

func (c *Client) sendError(err error) {
	c.SendControl(MsgError, ErrorMsg{Msg: err.Error()})
}

// forward relays a game frame to the other side of the room. End-of-run
// events are copied to the recorder on the way through.
func (c *Client) forward(data []byte) {
	other, room := c.hub.rooms.Peer(c)
	if room == "" {
		return
	}
	c.observe(room, data)
	if other != nil {
		other.SendBinary(data)
	}
}

func (c *Client) observe(room string, data []byte) {
	f, err := DecodeFrame(data)
	if err != nil {
		log.WithError(err).WithField("room", room).Debug("undecodable frame relayed")
		return
	}
	if f.T != MsgEvent {
		return
	}
	ev, err := DecodePayload[EventMsg](f)
	if err != nil || (ev.Event != EvWin && ev.Event != EvGameOver) {
		return
	}
	c.hub.recorder.TrackEnd(room, ev)
}

// handleMessage routes incoming control messages
func (c *Client) handleMessage(raw []byte) {
	env, err := DecodeControl(raw)
	if err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgCreate:
		c.handleCreate(env)
	case MsgJoin:
		c.handleJoin(env)
	case MsgLeave:
		c.hub.leaveRoom(c)
		c.slot = ""
	default:
		log.WithField("type", env.T).Debug("unknown control message")
	}
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return GenerateGuestName()
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

func (c *Client) handleCreate(env InEnvelope) {
	msg, err := DecodeControlPayload[CreateMsg](env)
	if err != nil {
		c.sendError(err)
		return
	}
	hash, err := HashPasscode(msg.Passcode)
	if err != nil {
		c.sendError(err)
		return
	}
	c.name = cleanName(msg.Name)
	room, err := c.hub.rooms.Create(c, c.name, hash)
	if err != nil {
		c.sendError(err)
		return
	}
	c.slot = SlotHost
	token, err := c.hub.auth.IssueToken(RoomClaims{Room: room.ID, Slot: SlotHost, Name: c.name})
	if err != nil {
		c.sendError(err)
		return
	}
	log.WithFields(log.Fields{"room": room.ID, "host": c.name, "locked": len(hash) > 0}).Info("room created")
	c.SendControl(MsgCreated, CreatedMsg{Room: room.ID, Token: token})
}

// handleJoin seats the peer. A token rejoins the slot it was issued for; a
// fresh join takes the guest slot after the passcode check.
func (c *Client) handleJoin(env InEnvelope) {
	msg, err := DecodeControlPayload[JoinMsg](env)
	if err != nil {
		c.sendError(err)
		return
	}

	room, slot, rejoin := msg.Room, SlotGuest, false
	c.name = cleanName(msg.Name)
	if msg.Token != "" {
		claims, err := c.hub.auth.ValidateToken(msg.Token)
		if err != nil {
			c.sendError(err)
			return
		}
		if room != "" && room != claims.Room {
			c.sendError(ErrBadToken)
			return
		}
		room, slot, rejoin = claims.Room, claims.Slot, true
		if claims.Name != "" {
			c.name = claims.Name
		}
	} else {
		hash, err := c.hub.rooms.Lookup(room)
		if err != nil {
			c.sendError(err)
			return
		}
		if err := c.hub.auth.CheckPasscode(hash, msg.Passcode, c.remoteAddr); err != nil {
			c.sendError(err)
			return
		}
	}

	other, otherName, err := c.hub.rooms.Join(room, slot, c, c.name, rejoin)
	if err != nil {
		if !errors.Is(err, ErrRoomFull) {
			log.WithError(err).WithField("room", room).Debug("join refused")
		}
		c.sendError(err)
		return
	}
	c.slot = slot
	token, err := c.hub.auth.IssueToken(RoomClaims{Room: room, Slot: slot, Name: c.name})
	if err != nil {
		c.sendError(err)
		return
	}
	log.WithFields(log.Fields{"room": room, "slot": slot, "peer": c.name, "rejoin": rejoin}).Info("peer joined room")
	c.SendControl(MsgJoined, JoinedMsg{Room: room, Token: token, Role: slot})
	if other != nil {
		c.SendControl(MsgPeerUp, PeerMsg{Name: otherName})
		other.SendControl(MsgPeerUp, PeerMsg{Name: c.name})
	}
}
