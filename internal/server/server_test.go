package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"webinar-platform/backend/internal/attendance"
	"webinar-platform/backend/internal/join"
	"webinar-platform/backend/internal/roster"
	"webinar-platform/backend/internal/session/repository"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", join.ErrSessionNotFound, http.StatusNotFound},
		{"forbidden", join.ErrForbidden, http.StatusForbidden},
		{"capacity", roster.ErrCapacityExceeded, http.StatusConflict},
		{"not attended", attendance.ErrNotAttended, http.StatusConflict},
		{"invalid user id", &roster.InvalidUserIDError{ID: "x"}, http.StatusBadRequest},
		// Retry exhaustion is an internal failure, not a caller-fixable conflict.
		{"version conflict exhaustion", repository.ErrVersionConflict, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapError(rec, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
