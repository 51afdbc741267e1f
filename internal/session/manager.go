package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tokoaing/internal/domain/entity"
	"tokoaing/pkg/logger"
)

// Manager owns the live sessions of the process, keyed by the id the client carries in its
// cookie or header. Sessions idle for longer than idleTTL are closed by the janitor.
type Manager struct {
	deps     Dependencies
	idleTTL  time.Duration
	mu       sync.Mutex
	sessions map[string]*Session
	nowFunc  func() time.Time
}

func NewManager(deps Dependencies, idleTTL time.Duration) *Manager {
	return &Manager{
		deps:     deps,
		idleTTL:  idleTTL,
		sessions: make(map[string]*Session),
		nowFunc:  time.Now,
	}
}

// Get returns the initialized session for id. Unknown or malformed ids get a new session,
// so callers must hand the returned session's ID back to the client.
func (m *Manager) Get(ctx context.Context, id string, themeHint entity.Theme) *Session {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = New(id, m.deps, themeHint)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	s.touch(m.nowFunc())
	s.Init(ctx)
	return s
}

func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

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
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the configured TTL and returns how many.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.nowFunc().Add(-m.idleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					logger.Debug("Closed %d idle sessions", n)
				}
			}
		}
	}()
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
