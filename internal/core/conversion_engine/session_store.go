package conversion_engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

// SessionStore keeps live sessions in memory. Nothing here survives a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
}

func NewSessionStore(logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{sessions: make(map[string]*Session), logger: logger}
}

// Create registers a new IDLE session for owner ("" when accounts are disabled).
func (st *SessionStore) Create(owner string) *Session {
	s := NewSession(uuid.NewString(), owner)

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts sessions last touched before cutoff. Processing sessions are kept
// so a worker never finishes into a session nobody can read.
func (st *SessionStore) Sweep(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, s := range st.sessions {
		state := s.State()
		if state.Status == models.StatusProcessing || !state.UpdatedAt.Before(cutoff) {
			continue
		}
		delete(st.sessions, id)
		evicted++
	}
	return evicted
}

// RunSweeper calls Sweep every ttl/2 until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := st.Sweep(now.Add(-ttl)); n > 0 {
				st.logger.Info("sessions.sweep", "evicted", n, "remaining", st.Len())
			}
		}
	}
}
