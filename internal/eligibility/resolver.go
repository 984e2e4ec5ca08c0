// Package eligibility decides whether a user may obtain an access grant for a
// session, and under which role. The decision is a pure function of its
// inputs; the join flow decides how to act on a denial.
package eligibility

import (
	"webinar-platform/backend/internal/session/domain"
)

// Basis records which rule admitted the user. The join flow uses it to decide
// whether an implicit roster registration is needed.
type Basis string

const (
	// BasisSpeaker: the user is the session's speaker.
	BasisSpeaker Basis = "speaker"
	// BasisRoster: the user is already registered on the roster.
	BasisRoster Basis = "roster"
	// BasisGroup: one of the user's groups is on the session's allowed list.
	BasisGroup Basis = "group"
	// BasisNone: no rule matched.
	BasisNone Basis = ""
)

// Decision is the outcome of an eligibility check.
type Decision struct {
	Allowed bool
	Role    domain.Role
	Basis   Basis
	// Reason is the denial reason, safe to surface to the caller. It never
	// discloses roster or group membership details.
	Reason string
}

// Resolve applies the admission rules in order; the first match wins.
//
//  1. The speaker enters as moderator regardless of roster or groups.
//  2. A registered participant enters as participant.
//  3. A member of an allowed group enters as participant.
//  4. Otherwise the user is denied.
func Resolve(session *domain.Session, userID string, userGroupIDs []string) Decision {
	if userID == session.SpeakerID {
		return Decision{Allowed: true, Role: domain.RoleModerator, Basis: BasisSpeaker}
	}
	if session.HasParticipant(userID) {
		return Decision{Allowed: true, Role: domain.RoleParticipant, Basis: BasisRoster}
	}
	if session.AllowsAnyGroup(userGroupIDs) {
		return Decision{Allowed: true, Role: domain.RoleParticipant, Basis: BasisGroup}
	}
	return Decision{Allowed: false, Basis: BasisNone, Reason: "not eligible"}
}
