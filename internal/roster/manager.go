// Package roster owns mutation of a session's participant list. All writes go
// through a per-session lock plus the store's version-CAS, so a roster can
// never exceed capacity or pick up duplicates under concurrent joins.
package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"webinar-platform/backend/internal/platform/sessionlock"
	"webinar-platform/backend/internal/session/domain"
	"webinar-platform/backend/internal/session/repository"
)

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrCapacityExceeded = errors.New("session capacity exceeded")
)

// InvalidUserIDError reports a syntactically invalid user id, naming the
// offending id so the caller can fix it.
type InvalidUserIDError struct {
	ID string
}

func (e *InvalidUserIDError) Error() string {
	return fmt.Sprintf("invalid user id %q", e.ID)
}

// casRetries bounds reload-and-retry on version conflicts. Conflicts are only
// possible against out-of-process writers; in-process callers are already
// serialized by the session lock.
const casRetries = 3

// SessionStore is the minimal session persistence needed by the manager.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	UpdateRoster(ctx context.Context, sessionID string, expectedVersion int64, roster []domain.Participant) error
}

// AddResult reports the outcome of AddParticipants per requested id.
type AddResult struct {
	Added          []string
	AlreadyPresent []string
}

// RemoveResult reports which ids were actually removed.
type RemoveResult struct {
	Removed []string
}

// Manager serializes roster mutation per session id.
type Manager struct {
	store SessionStore
	locks *sessionlock.Table
	nowF  func() time.Time
}

// NewManager returns a Manager using the given store and lock table.
// The lock table must be shared with every other writer of session rosters.
func NewManager(store SessionStore, locks *sessionlock.Table) *Manager {
	return &Manager{store: store, locks: locks, nowF: func() time.Time { return time.Now().UTC() }}
}

// AddParticipants registers the given users on the session's roster.
// Ids already present are reported, not duplicated. The capacity check is
// all-or-nothing: if the new ids do not all fit, nothing is written.
func (m *Manager) AddParticipants(ctx context.Context, sessionID string, userIDs []string) (*AddResult, error) {
	if err := validateUserIDs(userIDs); err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(sessionID)
	defer unlock()

	var result *AddResult
	err := m.mutate(ctx, sessionID, func(s *domain.Session) (bool, error) {
		result = &AddResult{}
		var newIDs []string
		seen := make(map[string]struct{}, len(userIDs))
		for _, id := range userIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if s.HasParticipant(id) {
				result.AlreadyPresent = append(result.AlreadyPresent, id)
			} else {
				newIDs = append(newIDs, id)
			}
		}
		if len(newIDs) == 0 {
			return false, nil
		}
		if len(s.Roster)+len(newIDs) > s.Capacity {
			return false, ErrCapacityExceeded
		}
		now := m.nowF()
		for _, id := range newIDs {
			s.Roster = append(s.Roster, domain.Participant{UserID: id, RegisteredAt: now})
			result.Added = append(result.Added, id)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveParticipants unregisters the given users. Removing an id that is not
// on the roster is a no-op, not an error.
func (m *Manager) RemoveParticipants(ctx context.Context, sessionID string, userIDs []string) (*RemoveResult, error) {
	if err := validateUserIDs(userIDs); err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(sessionID)
	defer unlock()

	var result *RemoveResult
	err := m.mutate(ctx, sessionID, func(s *domain.Session) (bool, error) {
		result = &RemoveResult{}
		drop := make(map[string]struct{}, len(userIDs))
		for _, id := range userIDs {
			drop[id] = struct{}{}
		}
		kept := s.Roster[:0]
		for _, p := range s.Roster {
			if _, ok := drop[p.UserID]; ok {
				result.Removed = append(result.Removed, p.UserID)
			} else {
				kept = append(kept, p)
			}
		}
		if len(result.Removed) == 0 {
			return false, nil
		}
		s.Roster = kept
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Admit registers a single user with attendance already marked, in one write.
// Used by the join flow for group-eligible users not yet on the roster, so a
// failed or timed-out join never leaves a half-joined participant behind.
// Admitting a user already on the roster marks attendance if not yet marked.
func (m *Manager) Admit(ctx context.Context, sessionID, userID string, at time.Time) error {
	if err := validateUserIDs([]string{userID}); err != nil {
		return err
	}

	unlock := m.locks.Lock(sessionID)
	defer unlock()

	return m.mutate(ctx, sessionID, func(s *domain.Session) (bool, error) {
		if p := s.FindParticipant(userID); p != nil {
			if p.Attended {
				return false, nil
			}
			t := at
			p.Attended = true
			p.AttendanceTime = &t
			return true, nil
		}
		if len(s.Roster)+1 > s.Capacity {
			return false, ErrCapacityExceeded
		}
		t := at
		s.Roster = append(s.Roster, domain.Participant{
			UserID:         userID,
			RegisteredAt:   at,
			Attended:       true,
			AttendanceTime: &t,
		})
		return true, nil
	})
}

// mutate loads the session, applies fn, and writes the roster back under the
// version CAS, retrying on conflicts with a fresh load. fn returns whether a
// write is needed. Callers must hold the session lock.
func (m *Manager) mutate(ctx context.Context, sessionID string, fn func(*domain.Session) (bool, error)) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		s, err := m.store.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return ErrSessionNotFound
		}
		dirty, err := fn(s)
		if err != nil {
			return err
		}
		if !dirty {
			return nil
		}
		err = m.store.UpdateRoster(ctx, sessionID, s.Version, s.Roster)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			// Session deleted between load and write.
			return ErrSessionNotFound
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
	}
	return repository.ErrVersionConflict
}

func validateUserIDs(userIDs []string) error {
	for _, id := range userIDs {
		if _, err := uuid.Parse(id); err != nil {
			return &InvalidUserIDError{ID: id}
		}
	}
	return nil
}
