package main

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	recorderQueue     = 1024
	recorderBatch     = 50
	recorderFlushTick = 5 * time.Second
)

// Recorder persists finished runs with batched background writes and keeps
// the relay's live counters
type Recorder struct {
	db   *DB
	runs chan RunRow
	stop chan struct{}
	wg   sync.WaitGroup

	mu          sync.RWMutex
	activePeers int
	activeRooms int
	recorded    int
}

// NewRecorder creates and starts the background writer. db may be nil, in
// which case runs are counted and discarded.
func NewRecorder(db *DB) *Recorder {
	r := &Recorder{
		db:   db,
		runs: make(chan RunRow, recorderQueue),
		stop: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writer()
	return r
}

// Track enqueues a run for async persistence (non-blocking)
func (r *Recorder) Track(run RunRow) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	select {
	case r.runs <- run:
	default:
		log.WithField("room", run.Room).Warn("run queue full, dropping run")
	}
}

// TrackEnd records a WIN or GAME_OVER event relayed through room
func (r *Recorder) TrackEnd(room string, ev EventMsg) {
	outcome := "win"
	if ev.Event == EvGameOver {
		outcome = "game_over"
	}
	r.Track(RunRow{
		Room:    room,
		Outcome: outcome,
		Level:   ev.Level,
		Score:   ev.Score,
		Coins:   ev.Coins,
		Frames:  ev.Frame,
		Players: ev.Names,
	})
}

// SetLive updates the live peer and room counts
func (r *Recorder) SetLive(peers, rooms int) {
	r.mu.Lock()
	r.activePeers = peers
	r.activeRooms = rooms
	r.mu.Unlock()
}

// Live returns (peers, rooms, runs recorded since start)
func (r *Recorder) Live() (int, int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activePeers, r.activeRooms, r.recorded
}

// Stop flushes pending runs and shuts the writer down
func (r *Recorder) Stop() {
	close(r.stop)
	r.wg.Wait()
}

func (r *Recorder) writer() {
	defer r.wg.Done()

	batch := make([]RunRow, 0, recorderBatch)
	ticker := time.NewTicker(recorderFlushTick)
	defer ticker.Stop()

	for {
		select {
		case run := <-r.runs:
			batch = append(batch, run)
			if len(batch) >= recorderBatch {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-r.stop:
		drain:
			for {
				select {
				case run := <-r.runs:
					batch = append(batch, run)
				default:
					break drain
				}
			}
			if len(batch) > 0 {
				r.flush(batch)
			}
			return
		}
	}
}

func (r *Recorder) flush(batch []RunRow) {
	r.mu.Lock()
	r.recorded += len(batch)
	r.mu.Unlock()
	if r.db == nil {
		return
	}
	if err := r.db.RecordRuns(batch); err != nil {
		log.WithError(err).WithField("runs", len(batch)).Error("record runs")
	}
}
