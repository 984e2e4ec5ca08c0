package repository

import (
	"context"
	"errors"

	"webinar-platform/backend/internal/session/domain"
)

// ErrVersionConflict is returned by UpdateRoster when the session changed
// since it was read. Callers reload and retry under their serialization scope.
var ErrVersionConflict = errors.New("session version conflict")

// ErrNotFound is returned by UpdateRoster when the session does not exist.
// Unlike ErrVersionConflict it is not retryable.
var ErrNotFound = errors.New("session not found")

// Repository defines persistence for sessions and their rosters.
type Repository interface {
	// GetByID returns the session for id with its roster, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// List returns all sessions ordered by start time, rosters included.
	List(ctx context.Context) ([]*domain.Session, error)
	// Create persists a new session. The session must have ID set.
	Create(ctx context.Context, s *domain.Session) error
	// UpdateRoster replaces the session's roster if the stored version still
	// equals expectedVersion, bumping the version. Returns ErrVersionConflict
	// when the conditional update loses and ErrNotFound when the session
	// does not exist.
	UpdateRoster(ctx context.Context, sessionID string, expectedVersion int64, roster []domain.Participant) error
}
