package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"webinar-platform/backend/internal/session/domain"
)

// MemoryRepository is an in-memory session store for development and tests.
// It honors the same version-CAS contract as the Postgres implementation.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewMemoryRepository returns an empty in-memory session store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*domain.Session)}
}

var _ Repository = (*MemoryRepository)(nil)

// GetByID returns a copy of the session for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

// List returns copies of all sessions ordered by start time.
func (r *MemoryRepository) List(ctx context.Context) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// Create stores a copy of the session.
func (r *MemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneSession(s)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.sessions[c.ID] = c
	return nil
}

// UpdateRoster replaces the roster if version matches; bumps version on success.
func (r *MemoryRepository) UpdateRoster(ctx context.Context, sessionID string, expectedVersion int64, roster []domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if s.Version != expectedVersion {
		return ErrVersionConflict
	}
	s.Roster = cloneRoster(roster)
	s.Version++
	return nil
}

func cloneSession(s *domain.Session) *domain.Session {
	c := *s
	c.AllowedGroupIDs = append([]string(nil), s.AllowedGroupIDs...)
	c.Roster = cloneRoster(s.Roster)
	return &c
}

func cloneRoster(roster []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, len(roster))
	for i, p := range roster {
		out[i] = p
		if p.AttendanceTime != nil {
			t := *p.AttendanceTime
			out[i].AttendanceTime = &t
		}
		if p.ExitTime != nil {
			t := *p.ExitTime
			out[i].ExitTime = &t
		}
	}
	return out
}
