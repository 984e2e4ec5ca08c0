// Package server is the driving HTTP adapter. It parses requests, delegates to
// the access and roster services, and maps their sentinel errors to statuses.
package server

import (
	"context"
	"errors"
	"net/http"

	"webinar-platform/backend/internal/attendance"
	"webinar-platform/backend/internal/audit"
	"webinar-platform/backend/internal/join"
	"webinar-platform/backend/internal/roster"
	"webinar-platform/backend/internal/session/domain"
)

// SessionLister lists sessions for the read endpoint.
type SessionLister interface {
	List(ctx context.Context) ([]*domain.Session, error)
}

// Server routes requests to the application services.
type Server struct {
	access   *join.Service
	roster   *roster.Manager
	sessions SessionLister
	auditor  audit.AuditLogger
	// ping checks the backing store for /healthz; nil means no store to check.
	ping func(context.Context) error
}

// New creates a Server wired to the given services. auditor and ping may be nil.
func New(access *join.Service, rosterMgr *roster.Manager, sessions SessionLister, auditor audit.AuditLogger, ping func(context.Context) error) *Server {
	return &Server{access: access, roster: rosterMgr, sessions: sessions, auditor: auditor, ping: ping}
}

// Handler returns the root http.Handler for the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if s.ping != nil {
			if err := s.ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, errors.New("store unavailable"))
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("POST /v1/sessions/{id}/join", s.handleJoin)
	mux.HandleFunc("POST /v1/sessions/{id}/exit", s.handleExit)
	mux.HandleFunc("POST /v1/sessions/{id}/participants", s.handleAddParticipants)
	mux.HandleFunc("DELETE /v1/sessions/{id}/participants", s.handleRemoveParticipants)

	return withRequestLog(withClientIP(mux))
}

// mapError translates service sentinel errors to HTTP statuses. Unknown
// errors become 500 without leaking details; that includes version-conflict
// retry exhaustion, which the caller cannot fix by changing the request.
func mapError(w http.ResponseWriter, err error) {
	var invalidID *roster.InvalidUserIDError
	switch {
	case errors.Is(err, join.ErrSessionNotFound),
		errors.Is(err, roster.ErrSessionNotFound),
		errors.Is(err, attendance.ErrSessionNotFound),
		errors.Is(err, join.ErrUserNotFound),
		errors.Is(err, attendance.ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, join.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, roster.ErrCapacityExceeded),
		errors.Is(err, attendance.ErrNotAttended):
		writeError(w, http.StatusConflict, err)
	case errors.As(err, &invalidID),
		errors.Is(err, attendance.ErrNegativeDuration):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
