package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxSessions = 100

// SessionIdleTimeout is how long an empty session lingers before it is
// reaped. A variable so tests can shorten it.
var SessionIdleTimeout = 60 * time.Second

// Session represents one arena that players can join
type Session struct {
	ID        string
	Name      string
	Game      *Game
	CreatedAt time.Time

	mu        sync.Mutex
	lastEmpty time.Time // zero while occupied
}

// SessionManager handles creation, lookup and reaping of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	db       *DB
	events   *EventRecorder
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a SessionManager and starts its reaper
func NewSessionManager(db *DB, events *EventRecorder) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		db:       db,
		events:   events,
		stop:     make(chan struct{}),
	}
	go sm.reaper()
	return sm
}

// Stop terminates the reaper goroutine
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stop) })
}

// CreateSession creates a new arena session. Returns nil if the limit
// is reached.
func (sm *SessionManager) CreateSession(name string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := uuid.NewString()
	game := NewGame(DefaultArenaConfig(), id, sm.events)
	sess := &Session{
		ID:        id,
		Name:      name,
		Game:      game,
		CreatedAt: time.Now(),
		lastEmpty: time.Now(),
	}
	sm.sessions[id] = sess
	go game.Run()
	if sm.events != nil {
		sm.events.Track(EvtRunStart, 0, id, name)
	}
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// MarkActive notes that a session has traffic
func (sm *SessionManager) MarkActive(id string) {
	sess := sm.GetSession(id)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.lastEmpty = time.Time{}
	sess.mu.Unlock()
}

// RemovePlayer removes a player from a session and starts the idle
// countdown when the session empties
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sess := sm.GetSession(sessionID)
	if sess == nil {
		return
	}
	sess.Game.RemovePlayer(playerID)

	if sess.Game.PlayerCount() == 0 {
		sess.mu.Lock()
		sess.lastEmpty = time.Now()
		sess.mu.Unlock()
	}
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Players: sess.Game.PlayerCount(),
		})
	}
	return list
}

// reaper periodically removes sessions that sat empty past the idle
// timeout, recording the finished run
func (sm *SessionManager) reaper() {
	ticker := time.NewTicker(SessionIdleTimeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sm.reapIdle()
		case <-sm.stop:
			return
		}
	}
}

func (sm *SessionManager) reapIdle() {
	now := time.Now()
	var expired []*Session

	sm.mu.Lock()
	for id, sess := range sm.sessions {
		sess.mu.Lock()
		empty := !sess.lastEmpty.IsZero() && now.Sub(sess.lastEmpty) > SessionIdleTimeout
		sess.mu.Unlock()
		if empty && sess.Game.PlayerCount() == 0 {
			delete(sm.sessions, id)
			expired = append(expired, sess)
		}
	}
	sm.mu.Unlock()

	for _, sess := range expired {
		duration := sess.Game.SessionTime()
		sess.Game.Stop()
		if sm.events != nil {
			sm.events.Track(EvtRunEnd, 0, sess.ID, "")
		}
		if sm.db != nil {
			if err := sm.db.RecordRun(sess.ID, duration); err != nil {
				log.Printf("record run: %v", err)
			}
		}
	}
}
