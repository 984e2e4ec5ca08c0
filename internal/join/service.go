// Package join orchestrates session access: it resolves eligibility, performs
// the roster and attendance side effects the admission basis requires, and
// issues the signed room token. Audit and telemetry are emitted best-effort
// and never fail the flow.
package join

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webinar-platform/backend/internal/accesstoken"
	"webinar-platform/backend/internal/audit"
	"webinar-platform/backend/internal/eligibility"
	sessiondomain "webinar-platform/backend/internal/session/domain"
	"webinar-platform/backend/internal/telemetry"
	userdomain "webinar-platform/backend/internal/user/domain"
)

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrForbidden       = errors.New("join not permitted")
)

// SessionReader loads sessions with their rosters.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// GroupDirectory resolves a user's group memberships.
type GroupDirectory interface {
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}

// UserDirectory loads users; the display name goes on the token.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Admitter performs the implicit registration used for group-eligible users:
// registration with attendance marked, in a single write.
type Admitter interface {
	Admit(ctx context.Context, sessionID, userID string, at time.Time) error
}

// AttendanceMarker records attendance for already-registered participants.
type AttendanceMarker interface {
	MarkAttended(ctx context.Context, sessionID, userID string, at time.Time) error
}

// TokenIssuer mints the signed room token for a granted join.
type TokenIssuer interface {
	Issue(session *sessiondomain.Session, userID, displayName string, role sessiondomain.Role, buffer time.Duration) (*accesstoken.Grant, error)
}

// ExitRecorder records a participant leaving the room.
type ExitRecorder interface {
	MarkExited(ctx context.Context, sessionID, userID string, at time.Time, watchedSeconds int64) error
}

// Service is the session access orchestrator.
type Service struct {
	sessions SessionReader
	groups   GroupDirectory
	users    UserDirectory
	roster   Admitter
	tracker  AttendanceMarker
	exits    ExitRecorder
	issuer   TokenIssuer
	buffer   time.Duration

	auditor audit.AuditLogger
	emitter telemetry.EventEmitter

	nowF func() time.Time
}

// NewService wires the access orchestrator. auditor and emitter may be nil;
// then the corresponding signals are simply not produced.
func NewService(
	sessions SessionReader,
	groups GroupDirectory,
	users UserDirectory,
	roster Admitter,
	tracker AttendanceMarker,
	exits ExitRecorder,
	issuer TokenIssuer,
	buffer time.Duration,
	auditor audit.AuditLogger,
	emitter telemetry.EventEmitter,
) *Service {
	return &Service{
		sessions: sessions,
		groups:   groups,
		users:    users,
		roster:   roster,
		tracker:  tracker,
		exits:    exits,
		issuer:   issuer,
		buffer:   buffer,
		auditor:  auditor,
		emitter:  emitter,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Join admits the user to the session and returns a signed room grant.
// buffer overrides the configured expiry grace window when positive.
//
// The admission basis determines the side effects: the speaker gets a
// moderator token without touching the roster; a registered participant gets
// attendance marked; a group-eligible user is registered and marked attended
// in one write, subject to capacity. A denial or capacity failure leaves the
// roster untouched.
func (s *Service) Join(ctx context.Context, sessionID, userID string, buffer time.Duration) (*accesstoken.Grant, error) {
	if buffer <= 0 {
		buffer = s.buffer
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		s.audit(ctx, "", userID, "session.join", "denied: unknown session "+sessionID)
		return nil, ErrSessionNotFound
	}
	groupIDs, err := s.groups.GroupsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	decision := eligibility.Resolve(session, userID, groupIDs)
	if !decision.Allowed {
		s.audit(ctx, sessionID, userID, "session.join", "denied: "+decision.Reason)
		s.emit(ctx, telemetry.EventJoinDenied, sessionID, userID, nil)
		return nil, fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
	}

	now := s.nowF()
	switch decision.Basis {
	case eligibility.BasisGroup:
		if err := s.roster.Admit(ctx, sessionID, userID, now); err != nil {
			return nil, err
		}
	case eligibility.BasisRoster:
		if err := s.tracker.MarkAttended(ctx, sessionID, userID, now); err != nil {
			return nil, err
		}
	}

	grant, err := s.issuer.Issue(session, userID, user.Name, decision.Role, buffer)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, sessionID, userID, "session.join",
		fmt.Sprintf(`{"role":%q,"basis":%q}`, decision.Role, decision.Basis))
	s.emit(ctx, telemetry.EventJoinGranted, sessionID, userID, map[string]string{
		"role":  string(decision.Role),
		"basis": string(decision.Basis),
	})
	return grant, nil
}

// Exit records a participant leaving the room, accumulating their watch time.
func (s *Service) Exit(ctx context.Context, sessionID, userID string, watchedSeconds int64) error {
	now := s.nowF()
	if err := s.exits.MarkExited(ctx, sessionID, userID, now, watchedSeconds); err != nil {
		return err
	}
	s.audit(ctx, sessionID, userID, "session.exit",
		fmt.Sprintf(`{"watchedSeconds":%d}`, watchedSeconds))
	s.emit(ctx, telemetry.EventExit, sessionID, userID, map[string]string{
		"watchedSeconds": fmt.Sprintf("%d", watchedSeconds),
	})
	return nil
}

func (s *Service) audit(ctx context.Context, sessionID, userID, action, metadata string) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogEvent(ctx, sessionID, userID, action, "session", metadata)
}

func (s *Service) emit(ctx context.Context, eventType, sessionID, userID string, metadata map[string]string) {
	if s.emitter == nil {
		return
	}
	event := telemetry.NewEvent(eventType, sessionID, userID)
	event.Metadata = metadata
	telemetry.EmitAsync(s.emitter, ctx, event)
}
