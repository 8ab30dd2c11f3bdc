package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryManager keeps sessions in process memory. A janitor goroutine
// removes expired sessions until Close is called.
type MemoryManager struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryManager creates a MemoryManager and starts its janitor.
func NewMemoryManager(cfg Config, logger *slog.Logger) *MemoryManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MemoryManager{
		cfg:      cfg.withDefaults(),
		logger:   logger,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}

	m.wg.Add(1)
	go m.janitor()
	return m
}

func (m *MemoryManager) Create(_ context.Context) (*Session, error) {
	s := newSession(m.cfg)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s.Clone(), nil
}

func (m *MemoryManager) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || !m.cfg.Clock.Now().Before(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryManager) Save(_ context.Context, s *Session) error {
	now := m.cfg.Clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[s.ID]
	if !ok || !now.Before(current.ExpiresAt) {
		return ErrSessionNotFound
	}

	saved := s.Clone()
	saved.CreatedAt = current.CreatedAt
	saved.UpdatedAt = now
	saved.ExpiresAt = now.Add(m.cfg.TTL)
	m.sessions[s.ID] = saved

	s.UpdatedAt = saved.UpdatedAt
	s.ExpiresAt = saved.ExpiresAt
	return nil
}

func (m *MemoryManager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the janitor removes them.
func (m *MemoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the janitor. It is safe to call more than once.
func (m *MemoryManager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
	})
	return nil
}

func (m *MemoryManager) janitor() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				m.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

// sweep removes expired sessions and returns how many it removed.
func (m *MemoryManager) sweep() int {
	now := m.cfg.Clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

var _ Manager = (*MemoryManager)(nil)
