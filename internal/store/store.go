// Package store persists chat sessions. The interface is the seam where
// a database-backed implementation would slot in; the in-memory
// implementation is the default and sufficient for the service's
// "document store keyed by id" contract.
package store

import (
	"context"

	"github.com/carelink/backend/internal/domain"
)

// Store is the session persistence interface. Every method that reads or
// mutates a session takes the owner id and must treat ownership
// mismatches as not-found.
type Store interface {
	// CreateSession persists a new session.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession returns the session if it exists and belongs to ownerID.
	GetSession(ctx context.Context, id, ownerID string) (*domain.ChatSession, error)

	// ListSessions returns all of ownerID's sessions, most recently
	// active first.
	ListSessions(ctx context.Context, ownerID string) ([]*domain.ChatSession, error)

	// UpdateSession replaces a stored session after a mutation.
	UpdateSession(ctx context.Context, session *domain.ChatSession) error

	// DeleteSession permanently removes the session.
	DeleteSession(ctx context.Context, id, ownerID string) error
}
