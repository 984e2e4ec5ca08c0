package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"webinar-platform/backend/internal/accesstoken"
	"webinar-platform/backend/internal/attendance"
	groupdomain "webinar-platform/backend/internal/group/domain"
	grouprepo "webinar-platform/backend/internal/group/repository"
	"webinar-platform/backend/internal/join"
	"webinar-platform/backend/internal/platform/sessionlock"
	"webinar-platform/backend/internal/roster"
	"webinar-platform/backend/internal/security"
	sessiondomain "webinar-platform/backend/internal/session/domain"
	sessionrepo "webinar-platform/backend/internal/session/repository"
	userdomain "webinar-platform/backend/internal/user/domain"
	userrepo "webinar-platform/backend/internal/user/repository"
)

const (
	speakerID  = "6a6f6e65-0000-4000-8000-0000000000aa"
	rosteredID = "6a6f6e65-0000-4000-8000-0000000000ab"
	memberID   = "6a6f6e65-0000-4000-8000-0000000000ac"
	outsiderID = "6a6f6e65-0000-4000-8000-0000000000ae"
)

func newTestHandler(t *testing.T, capacity int) http.Handler {
	t.Helper()

	sessions := sessionrepo.NewMemoryRepository()
	groups := grouprepo.NewMemoryRepository()
	users := userrepo.NewMemoryRepository()
	ctx := context.Background()

	start := time.Now().UTC().Add(-10 * time.Minute)
	err := sessions.Create(ctx, &sessiondomain.Session{
		ID:              "s1",
		Title:           "Go Release Briefing",
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		SpeakerID:       speakerID,
		AllowedGroupIDs: []string{"g1"},
		Capacity:        capacity,
		Roster: []sessiondomain.Participant{
			{UserID: rosteredID, RegisteredAt: start.Add(-24 * time.Hour)},
		},
	})
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	err = groups.Create(ctx, &groupdomain.Group{ID: "g1", Name: "engineering", MemberIDs: []string{memberID}})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	for id, name := range map[string]string{
		speakerID: "Speaker", rosteredID: "Rostered", memberID: "Member", outsiderID: "Outsider",
	} {
		if err := users.Create(ctx, &userdomain.User{ID: id, Name: name}); err != nil {
			t.Fatalf("Create user: %v", err)
		}
	}

	key, err := security.ParsePrivateKey(security.TestPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	locks := sessionlock.NewTable()
	rosterMgr := roster.NewManager(sessions, locks)
	tracker := attendance.NewTracker(sessions, locks)
	access := join.NewService(
		sessions, groups, users, rosterMgr, tracker, tracker,
		accesstoken.NewIssuer(key, "webinar", "chat", "jitsi"),
		30*time.Minute, nil, nil,
	)
	return New(access, rosterMgr, sessions, nil, nil).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, 10)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestJoinEndpoint(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/join", `{"userId":"`+memberID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp joinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Error("token must be set")
	}
	if resp.RoomName != "webinar/s1" {
		t.Errorf("roomName = %q", resp.RoomName)
	}
	if resp.Role != "participant" {
		t.Errorf("role = %q, want participant", resp.Role)
	}
	if resp.ExpiresAt.IsZero() {
		t.Error("expiresAt must be set")
	}
}

func TestJoinEndpoint_BufferOverride(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/join",
		`{"userId":"`+memberID+`","bufferMinutes":60}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp joinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Session is live, so expiry is endTime + override buffer.
	if got := resp.ExpiresAt.Sub(resp.EndTime); got != 60*time.Minute {
		t.Errorf("expiresAt - endTime = %v, want 60m", got)
	}
}

func TestJoinEndpoint_Forbidden(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/join", `{"userId":"`+outsiderID+`"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestJoinEndpoint_UnknownSession(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/missing/join", `{"userId":"`+memberID+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJoinEndpoint_CapacityConflict(t *testing.T) {
	// Capacity already filled by the rostered participant.
	h := newTestHandler(t, 1)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/join", `{"userId":"`+memberID+`"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestJoinEndpoint_BadBody(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/join", `{"nope":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAddParticipantsEndpoint(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/participants",
		`{"userIds":["`+memberID+`","`+rosteredID+`"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Added          []string `json:"added"`
		AlreadyPresent []string `json:"alreadyPresent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Added) != 1 || resp.Added[0] != memberID {
		t.Errorf("added = %v", resp.Added)
	}
	if len(resp.AlreadyPresent) != 1 || resp.AlreadyPresent[0] != rosteredID {
		t.Errorf("alreadyPresent = %v", resp.AlreadyPresent)
	}
}

func TestAddParticipantsEndpoint_InvalidID(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/participants", `{"userIds":["nope"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRemoveParticipantsEndpoint(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodDelete, "/v1/sessions/s1/participants",
		`{"userIds":["`+rosteredID+`"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Removed []string `json:"removed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Removed) != 1 || resp.Removed[0] != rosteredID {
		t.Errorf("removed = %v", resp.Removed)
	}
}

func TestExitEndpoint(t *testing.T) {
	h := newTestHandler(t, 10)

	if rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/join", `{"userId":"`+rosteredID+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("join status = %d", rec.Code)
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/exit",
		`{"userId":"`+rosteredID+`","watchedSeconds":600}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestExitEndpoint_BeforeAttendance(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/exit",
		`{"userId":"`+rosteredID+`","watchedSeconds":600}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodGet, "/v1/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Sessions []sessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(resp.Sessions))
	}
	got := resp.Sessions[0]
	if got.ID != "s1" || got.Registered != 1 || got.Attended != 0 {
		t.Errorf("summary = %+v", got)
	}
	if !got.Live {
		t.Error("session should be live")
	}
}

func TestListSessionsEndpoint_PastFilter(t *testing.T) {
	h := newTestHandler(t, 10)

	rec := doJSON(t, h, http.MethodGet, "/v1/sessions?filter=past", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Sessions []sessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sessions) != 0 {
		t.Errorf("sessions = %d, want 0 (session is live)", len(resp.Sessions))
	}
}
