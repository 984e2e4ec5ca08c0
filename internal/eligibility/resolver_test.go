package eligibility

import (
	"testing"
	"time"

	"webinar-platform/backend/internal/session/domain"
)

func testSession() *domain.Session {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Session{
		ID:        "s1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		SpeakerID: "speaker",
		Capacity:  10,
	}
}

func TestResolve_Speaker(t *testing.T) {
	s := testSession()
	// Speaker wins regardless of roster or groups.
	d := Resolve(s, "speaker", nil)
	if !d.Allowed || d.Role != domain.RoleModerator || d.Basis != BasisSpeaker {
		t.Errorf("speaker decision = %+v", d)
	}
}

func TestResolve_RosterMember(t *testing.T) {
	s := testSession()
	s.Roster = []domain.Participant{{UserID: "u1"}}

	d := Resolve(s, "u1", nil)
	if !d.Allowed || d.Role != domain.RoleParticipant || d.Basis != BasisRoster {
		t.Errorf("roster decision = %+v", d)
	}
}

func TestResolve_GroupMember(t *testing.T) {
	s := testSession()
	s.AllowedGroupIDs = []string{"g1"}

	d := Resolve(s, "u1", []string{"g1"})
	if !d.Allowed || d.Role != domain.RoleParticipant || d.Basis != BasisGroup {
		t.Errorf("group decision = %+v", d)
	}
}

func TestResolve_WrongGroup(t *testing.T) {
	s := testSession()
	s.AllowedGroupIDs = []string{"g2"}

	d := Resolve(s, "u1", []string{"g1"})
	if d.Allowed {
		t.Errorf("wrong group should be denied, got %+v", d)
	}
	if d.Reason != "not eligible" {
		t.Errorf("Reason = %q", d.Reason)
	}
}

func TestResolve_EmptyAllowedGroups(t *testing.T) {
	s := testSession()
	// No allowed groups: group membership can never admit.
	d := Resolve(s, "u1", []string{"g1", "g2"})
	if d.Allowed {
		t.Errorf("empty allowed-group list should deny, got %+v", d)
	}
}

func TestResolve_SpeakerBeatsRoster(t *testing.T) {
	s := testSession()
	s.Roster = []domain.Participant{{UserID: "speaker"}}

	d := Resolve(s, "speaker", nil)
	if d.Role != domain.RoleModerator || d.Basis != BasisSpeaker {
		t.Errorf("speaker on roster should still be moderator, got %+v", d)
	}
}
