package store

import (
	"context"
	"sort"
	"sync"

	"github.com/carelink/backend/internal/domain"
)

// MemoryStore implements Store with in-memory storage.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.ChatSession),
	}
}

// CreateSession persists a new session.
func (s *MemoryStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID.String()] = cloneSession(session)
	return nil
}

// GetSession returns a copy of the session. Ownership mismatches look
// identical to missing sessions.
func (s *MemoryStore) GetSession(_ context.Context, id, ownerID string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return cloneSession(session), nil
}

// ListSessions returns the owner's sessions, most recently active first.
func (s *MemoryStore) ListSessions(_ context.Context, ownerID string) ([]*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*domain.ChatSession
	for _, session := range s.sessions {
		if session.OwnerID == ownerID {
			sessions = append(sessions, cloneSession(session))
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	return sessions, nil
}

// UpdateSession replaces a stored session.
func (s *MemoryStore) UpdateSession(_ context.Context, session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID.String()]
	if !ok || existing.OwnerID != session.OwnerID {
		return domain.ErrNotFound
	}
	s.sessions[session.ID.String()] = cloneSession(session)
	return nil
}

// DeleteSession permanently removes the session.
func (s *MemoryStore) DeleteSession(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// cloneSession copies a session so callers never share slices with the
// stored record.
func cloneSession(s *domain.ChatSession) *domain.ChatSession {
	clone := *s
	clone.Messages = append([]domain.Message(nil), s.Messages...)
	clone.Reports = append([]domain.UploadedReport(nil), s.Reports...)
	return &clone
}
