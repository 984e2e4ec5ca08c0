// Package domain contains the live-session model: a scheduled event with a
// time window, a speaker, a capacity, and a roster of participants.
package domain

import (
	"errors"
	"time"
)

// Role is the capability level granted to a user inside a conference room.
type Role string

const (
	// RoleModerator grants host-level conferencing capabilities. Speakers get it.
	RoleModerator Role = "moderator"
	// RoleParticipant is the default attendee role.
	RoleParticipant Role = "participant"
)

// Participant is a roster entry. Attendance fields track the lifecycle
// registered -> attended -> exited.
type Participant struct {
	UserID               string
	RegisteredAt         time.Time
	Attended             bool
	AttendanceTime       *time.Time // set on first attendance; never reset
	ExitTime             *time.Time
	WatchDurationSeconds int64 // accumulated across join/leave cycles
}

// Session represents a scheduled live event.
type Session struct {
	ID              string
	Title           string
	StartTime       time.Time
	EndTime         time.Time
	SpeakerID       string
	AllowedGroupIDs []string
	Capacity        int
	Roster          []Participant
	// Version guards conditional roster updates at the store.
	Version   int64
	CreatedAt time.Time
}

// Validate checks the session's structural invariants.
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session: id is required")
	}
	if !s.StartTime.Before(s.EndTime) {
		return errors.New("session: start time must be before end time")
	}
	if s.Capacity <= 0 {
		return errors.New("session: capacity must be positive")
	}
	if len(s.Roster) > s.Capacity {
		return errors.New("session: roster exceeds capacity")
	}
	seen := make(map[string]struct{}, len(s.Roster))
	for _, p := range s.Roster {
		if _, ok := seen[p.UserID]; ok {
			return errors.New("session: duplicate participant " + p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}

// FindParticipant returns a pointer into the roster for userID, or nil if absent.
func (s *Session) FindParticipant(userID string) *Participant {
	for i := range s.Roster {
		if s.Roster[i].UserID == userID {
			return &s.Roster[i]
		}
	}
	return nil
}

// HasParticipant reports whether userID is on the roster.
func (s *Session) HasParticipant(userID string) bool {
	return s.FindParticipant(userID) != nil
}

// AllowsAnyGroup reports whether any of groupIDs is in the session's allowed-group set.
// An empty allowed-group list admits no one by group.
func (s *Session) AllowsAnyGroup(groupIDs []string) bool {
	if len(s.AllowedGroupIDs) == 0 {
		return false
	}
	allowed := make(map[string]struct{}, len(s.AllowedGroupIDs))
	for _, g := range s.AllowedGroupIDs {
		allowed[g] = struct{}{}
	}
	for _, g := range groupIDs {
		if _, ok := allowed[g]; ok {
			return true
		}
	}
	return false
}

// IsLive reports whether now falls inside the session's scheduled window.
func (s *Session) IsLive(now time.Time) bool {
	return !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// IsPast reports whether the session's scheduled window has ended.
func (s *Session) IsPast(now time.Time) bool {
	return now.After(s.EndTime)
}
