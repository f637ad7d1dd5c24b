package practice

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/studyaid/backend/internal/models"
)

// Manager keeps the active sessions of this process.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	clock       Clock
}

func NewManager(idleTimeout time.Duration, clock Clock) *Manager {
	if clock == nil {
		clock = SystemClock
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		clock:       clock,
	}
}

func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops and closes a session. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// ── Background Worker ───────────────────────────────────

// StartSweeper closes idle and exited sessions every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("[practice] Session sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[practice] Session sweeper shutting down")
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				log.Printf("[practice] sweeper closed %d sessions", n)
			}
		}
	}
}

func (m *Manager) sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		idle := m.idleTimeout > 0 && now.Sub(s.LastActivity()) > m.idleTimeout
		if idle || s.Status() == models.SessionExited {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}
