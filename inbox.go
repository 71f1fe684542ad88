package main

import (
	"fmt"
	"sync"
)

const maxStagedEvents = 256

// Staged is everything received since the previous tick
type Staged struct {
	Restart *RestartMsg
	Events  []EventMsg
	State   *StateMsg
	Input   *InputMsg
}

// Inbox stages inbound game messages between ticks. The transport's read
// loop pushes; the tick goroutine takes everything at the start of a tick, so
// applying messages never interleaves with a tick.
type Inbox struct {
	mu      sync.Mutex
	staged  Staged
	dropped int
}

// NewInbox creates an empty inbox
func NewInbox() *Inbox {
	return &Inbox{}
}

// Push decodes a binary frame and stages it. Only the newest INPUT and
// STATE are kept. A RESTART discards whatever was staged for the old level
// except chat, which no snapshot can bring back.
func (ib *Inbox) Push(data []byte) error {
	f, err := DecodeFrame(data)
	if err != nil {
		return err
	}

	switch f.T {
	case MsgInput:
		in, err := DecodePayload[InputMsg](f)
		if err != nil {
			return err
		}
		ib.mu.Lock()
		if ib.staged.Input == nil || in.Frame >= ib.staged.Input.Frame {
			ib.staged.Input = &in
		}
		ib.mu.Unlock()
	case MsgState:
		st, err := DecodePayload[StateMsg](f)
		if err != nil {
			return err
		}
		ib.mu.Lock()
		if ib.staged.State == nil || st.Frame >= ib.staged.State.Frame {
			ib.staged.State = &st
		}
		ib.mu.Unlock()
	case MsgEvent:
		ev, err := DecodePayload[EventMsg](f)
		if err != nil {
			return err
		}
		ib.mu.Lock()
		ib.staged.Events = append(ib.staged.Events, ev)
		if n := len(ib.staged.Events); n > maxStagedEvents {
			ib.staged.Events = ib.staged.Events[n-maxStagedEvents:]
			ib.dropped += n - maxStagedEvents
		}
		ib.mu.Unlock()
	case MsgRestart:
		rs, err := DecodePayload[RestartMsg](f)
		if err != nil {
			return err
		}
		ib.mu.Lock()
		var chat []EventMsg
		for _, ev := range ib.staged.Events {
			if ev.Event == EvChat {
				chat = append(chat, ev)
			}
		}
		ib.staged = Staged{Restart: &rs, Input: ib.staged.Input, Events: chat}
		ib.mu.Unlock()
	default:
		return fmt.Errorf("unknown message type %q", f.T)
	}
	return nil
}

// Take returns and clears everything staged
func (ib *Inbox) Take() Staged {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	st := ib.staged
	ib.staged = Staged{}
	return st
}

// Dropped returns how many events were discarded because the queue overflowed
func (ib *Inbox) Dropped() int {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return ib.dropped
}
