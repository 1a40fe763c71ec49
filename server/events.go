package main

import (
	"log"
	"sync"
	"time"
)

// Event types
const (
	EvtRunStart    = "run_start"
	EvtRunEnd      = "run_end"
	EvtEnemyKill   = "enemy_kill"
	EvtPlayerDeath = "player_death"
	EvtBossSpawn   = "boss_spawn"
)

const (
	eventBufSize   = 512
	eventBatchSize = 50
	eventFlushTick = 5 * time.Second
)

// RunEvent is a single tracked gameplay event
type RunEvent struct {
	Type      string
	PilotID   int64
	SessionID string
	Data      string
	At        time.Time
}

// EventRecorder buffers gameplay events and writes them to the
// database in batches from a background goroutine, so the tick loop
// never blocks on sqlite.
type EventRecorder struct {
	db       *DB
	ch       chan RunEvent
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewEventRecorder starts the background writer
func NewEventRecorder(db *DB) *EventRecorder {
	er := &EventRecorder{
		db:   db,
		ch:   make(chan RunEvent, eventBufSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go er.writer()
	return er
}

// Track queues an event. Drops it if the buffer is full.
func (er *EventRecorder) Track(evtType string, pilotID int64, sessionID, data string) {
	select {
	case er.ch <- RunEvent{
		Type:      evtType,
		PilotID:   pilotID,
		SessionID: sessionID,
		Data:      data,
		At:        time.Now(),
	}:
	default:
		// Full buffer means the db is behind; losing analytics beats stalling
	}
}

// Stop flushes pending events and stops the writer
func (er *EventRecorder) Stop() {
	er.stopOnce.Do(func() {
		close(er.stop)
		<-er.done
	})
}

func (er *EventRecorder) writer() {
	defer close(er.done)
	ticker := time.NewTicker(eventFlushTick)
	defer ticker.Stop()

	batch := make([]RunEvent, 0, eventBatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := er.db.InsertEvents(batch); err != nil {
			log.Printf("event flush failed: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-er.ch:
			batch = append(batch, e)
			if len(batch) >= eventBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-er.stop:
			// Drain whatever is queued before exiting
			for {
				select {
				case e := <-er.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
