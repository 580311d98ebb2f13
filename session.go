package main

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrTooManySessions is returned when the session limit is reached
	ErrTooManySessions = errors.New("too many sessions")
	// ErrInvalidLevel is returned for a requested start level outside
	// 0..max_level
	ErrInvalidLevel = errors.New("invalid level")
)

// Session represents a game session that players can join
type Session struct {
	ID   string
	Name string
	Game *Game
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	cfg       Config
	db        *DB
	analytics *Analytics
	logger    *zap.Logger
}

// NewSessionManager creates a new SessionManager. db may be nil, in which
// case finished runs are not recorded.
func NewSessionManager(cfg Config, db *DB, analytics *Analytics, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		db:        db,
		analytics: analytics,
		logger:    logger,
	}
}

// CreateSession starts a game at the given level, or at the configured start
// level when level is nil. A requested level must lie in 0..max_level; other
// levels are reachable only through the configured start level.
func (sm *SessionManager) CreateSession(name string, level *int) (*Session, error) {
	if level != nil && (*level < 0 || *level > sm.cfg.Game.MaxLevel) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, *level)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	gc := sm.cfg.Game
	if level != nil {
		gc.StartLevel = *level
	}
	id := uuid.NewString()
	var recorder RunRecorder
	if sm.db != nil {
		recorder = sm.db
	}
	game := NewGame(id, gc, recorder, sm.analytics, sm.logger)
	sess := &Session{
		ID:   id,
		Name: name,
		Game: game,
	}
	game.onCrash = func() { sm.dropCrashed(sess) }
	sm.sessions[id] = sess
	go game.Run()

	sm.analytics.Track(EvtSessionStart, 0, id, "")
	sm.logger.Info("session created", zap.String("session", id), zap.String("name", name), zap.Int("level", gc.StartLevel))
	return sess, nil
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemovePlayer removes a player from a session and closes the session once
// it is empty
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Game.RemovePlayer(playerID)

	sm.mu.Lock()
	closing := sm.sessions[sessionID] == sess && sess.Game.PlayerCount() == 0
	if closing {
		delete(sm.sessions, sessionID)
	}
	sm.mu.Unlock()
	if closing {
		sm.closeSession(sess)
	}
}

// dropCrashed closes a session whose game loop stopped on a failed tick
func (sm *SessionManager) dropCrashed(sess *Session) {
	sm.mu.Lock()
	live := sm.sessions[sess.ID] == sess
	if live {
		delete(sm.sessions, sess.ID)
	}
	sm.mu.Unlock()
	if live {
		sm.logger.Warn("dropping crashed session", zap.String("session", sess.ID))
		sm.closeSession(sess)
	}
}

func (sm *SessionManager) closeSession(sess *Session) {
	sess.Game.Abandon()
	sess.Game.Stop()
	sm.analytics.Track(EvtSessionEnd, 0, sess.ID, "")
	sm.logger.Info("session closed", zap.String("session", sess.ID))
}

// ListSessions returns info about all active sessions sorted by name
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      s.ID,
			Name:    s.Name,
			Players: s.Game.PlayerCount(),
			Level:   s.Game.Level(),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// StopAll closes every session
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()

	for _, s := range sessions {
		sm.closeSession(s)
	}
}
