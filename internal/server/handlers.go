package server

import (
	"fmt"
	"net/http"
	"time"

	"webinar-platform/backend/internal/session/domain"
)

type joinRequest struct {
	UserID string `json:"userId"`
	// BufferMinutes optionally overrides the configured token grace window.
	BufferMinutes int `json:"bufferMinutes"`
}

type joinResponse struct {
	Token     string    `json:"token"`
	RoomName  string    `json:"roomName"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var body joinRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	buffer := time.Duration(body.BufferMinutes) * time.Minute
	grant, err := s.access.Join(r.Context(), r.PathValue("id"), body.UserID, buffer)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{
		Token:     grant.Token,
		RoomName:  grant.RoomName,
		Role:      string(grant.Role),
		ExpiresAt: grant.ExpiresAt,
		StartTime: grant.StartTime,
		EndTime:   grant.EndTime,
	})
}

type exitRequest struct {
	UserID         string `json:"userId"`
	WatchedSeconds int64  `json:"watchedSeconds"`
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	var body exitRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.access.Exit(r.Context(), r.PathValue("id"), body.UserID, body.WatchedSeconds); err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type participantsRequest struct {
	UserIDs []string `json:"userIds"`
}

func (s *Server) handleAddParticipants(w http.ResponseWriter, r *http.Request) {
	var body participantsRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sessionID := r.PathValue("id")
	res, err := s.roster.AddParticipants(r.Context(), sessionID, body.UserIDs)
	if err != nil {
		mapError(w, err)
		return
	}
	if s.auditor != nil {
		s.auditor.LogEvent(r.Context(), sessionID, "", "roster.add", "session",
			fmt.Sprintf(`{"added":%d,"alreadyPresent":%d}`, len(res.Added), len(res.AlreadyPresent)))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added":          emptyIfNil(res.Added),
		"alreadyPresent": emptyIfNil(res.AlreadyPresent),
	})
}

func (s *Server) handleRemoveParticipants(w http.ResponseWriter, r *http.Request) {
	var body participantsRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sessionID := r.PathValue("id")
	res, err := s.roster.RemoveParticipants(r.Context(), sessionID, body.UserIDs)
	if err != nil {
		mapError(w, err)
		return
	}
	if s.auditor != nil {
		s.auditor.LogEvent(r.Context(), sessionID, "", "roster.remove", "session",
			fmt.Sprintf(`{"removed":%d}`, len(res.Removed)))
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": emptyIfNil(res.Removed)})
}

type sessionSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	SpeakerID  string    `json:"speakerId"`
	Capacity   int       `json:"capacity"`
	Registered int       `json:"registered"`
	Attended   int       `json:"attended"`
	Live       bool      `json:"live"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	filter := r.URL.Query().Get("filter")
	now := time.Now().UTC()
	out := make([]sessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		switch filter {
		case "upcoming":
			if sess.IsPast(now) {
				continue
			}
		case "past":
			if !sess.IsPast(now) {
				continue
			}
		}
		out = append(out, summarize(sess, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func summarize(s *domain.Session, now time.Time) sessionSummary {
	attended := 0
	for _, p := range s.Roster {
		if p.Attended {
			attended++
		}
	}
	return sessionSummary{
		ID:         s.ID,
		Title:      s.Title,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		SpeakerID:  s.SpeakerID,
		Capacity:   s.Capacity,
		Registered: len(s.Roster),
		Attended:   attended,
		Live:       s.IsLive(now),
	}
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
