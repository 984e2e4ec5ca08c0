// Package attendance records participant lifecycle transitions:
// registered -> attended -> exited. Watch duration accumulates across
// join/leave cycles reported by the conferencing layer.
package attendance

import (
	"context"
	"errors"
	"time"

	"webinar-platform/backend/internal/platform/sessionlock"
	"webinar-platform/backend/internal/session/domain"
	"webinar-platform/backend/internal/session/repository"
)

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrParticipantNotFound = errors.New("participant not on roster")
	ErrNotAttended         = errors.New("participant has not attended")
	ErrNegativeDuration    = errors.New("watched seconds must be non-negative")
)

const casRetries = 3

// SessionStore is the minimal session persistence needed by the tracker.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	UpdateRoster(ctx context.Context, sessionID string, expectedVersion int64, roster []domain.Participant) error
}

// Tracker serializes attendance-state writes per session id. It must share
// its lock table with the roster manager so all mutation of one session is
// totally ordered.
type Tracker struct {
	store SessionStore
	locks *sessionlock.Table
}

// NewTracker returns a Tracker using the given store and lock table.
func NewTracker(store SessionStore, locks *sessionlock.Table) *Tracker {
	return &Tracker{store: store, locks: locks}
}

// MarkAttended records the participant's first attendance at the given time.
// Replaying the call never resets the original timestamp.
func (t *Tracker) MarkAttended(ctx context.Context, sessionID, userID string, at time.Time) error {
	unlock := t.locks.Lock(sessionID)
	defer unlock()

	return t.mutate(ctx, sessionID, func(s *domain.Session) (bool, error) {
		p := s.FindParticipant(userID)
		if p == nil {
			return false, ErrParticipantNotFound
		}
		if p.Attended {
			return false, nil
		}
		ts := at
		p.Attended = true
		p.AttendanceTime = &ts
		return true, nil
	})
}

// MarkExited records a leave event, setting the exit time and adding
// watchedSeconds to the accumulated watch duration. Valid only after the
// participant has attended; repeated calls accumulate rather than overwrite.
func (t *Tracker) MarkExited(ctx context.Context, sessionID, userID string, at time.Time, watchedSeconds int64) error {
	if watchedSeconds < 0 {
		return ErrNegativeDuration
	}

	unlock := t.locks.Lock(sessionID)
	defer unlock()

	return t.mutate(ctx, sessionID, func(s *domain.Session) (bool, error) {
		p := s.FindParticipant(userID)
		if p == nil {
			return false, ErrParticipantNotFound
		}
		if !p.Attended {
			return false, ErrNotAttended
		}
		ts := at
		p.ExitTime = &ts
		p.WatchDurationSeconds += watchedSeconds
		return true, nil
	})
}

func (t *Tracker) mutate(ctx context.Context, sessionID string, fn func(*domain.Session) (bool, error)) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		s, err := t.store.GetByID(ctx, sessionID)
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
		err = t.store.UpdateRoster(ctx, sessionID, s.Version, s.Roster)
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
