package main

// GameEvent is produced by physics and collision code and consumed once per
// tick by the reaction step (feedback effects and network relay)
type GameEvent struct {
	Msg   EventMsg
	X, Y  float64 // where feedback is shown
	Local bool    // feedback only, never relayed
}

// EventQueue is an explicit producer/consumer queue drained once per tick
type EventQueue struct {
	items []GameEvent
}

// Push enqueues an event for this tick's reaction step
func (q *EventQueue) Push(ev GameEvent) {
	q.items = append(q.items, ev)
}

// Len returns the number of pending events
func (q *EventQueue) Len() int {
	return len(q.items)
}

// Drain hands every pending event to fn in push order and empties the queue.
// Events pushed by fn are handled in the same drain.
func (q *EventQueue) Drain(fn func(GameEvent)) {
	for i := 0; i < len(q.items); i++ {
		fn(q.items[i])
	}
	q.items = q.items[:0]
}

// Reset drops pending events
func (q *EventQueue) Reset() {
	q.items = q.items[:0]
}

const ChatLines = 32

// ChatLine is one received or sent chat message
type ChatLine struct {
	From string
	Text string
}

// ChatLog keeps the last ChatLines messages
type ChatLog struct {
	lines []ChatLine
}

// Add appends a line, evicting the oldest past the cap
func (c *ChatLog) Add(from, text string) {
	c.lines = append(c.lines, ChatLine{From: from, Text: text})
	if len(c.lines) > ChatLines {
		c.lines = c.lines[len(c.lines)-ChatLines:]
	}
}

// Lines returns a copy of the log, oldest first
func (c *ChatLog) Lines() []ChatLine {
	return append([]ChatLine(nil), c.lines...)
}
