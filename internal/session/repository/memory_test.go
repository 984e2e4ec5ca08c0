package repository

import (
	"context"
	"testing"
	"time"

	"webinar-platform/backend/internal/session/domain"
)

func testSession(id string) *domain.Session {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Session{
		ID:        id,
		Title:     "t",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		SpeakerID: "speaker",
		Capacity:  5,
	}
}

func TestMemoryRepository_GetByID(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	got, err := r.GetByID(ctx, "missing")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatal("GetByID missing should return nil")
	}

	if err := r.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err = r.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ID != "s1" {
		t.Fatalf("GetByID = %v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.Roster = append(got.Roster, domain.Participant{UserID: "u1"})
	again, _ := r.GetByID(ctx, "s1")
	if len(again.Roster) != 0 {
		t.Error("GetByID must return an isolated copy")
	}
}

func TestMemoryRepository_UpdateRosterCAS(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	if err := r.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	roster := []domain.Participant{{UserID: "u1", RegisteredAt: time.Now().UTC()}}
	if err := r.UpdateRoster(ctx, "s1", 0, roster); err != nil {
		t.Fatalf("UpdateRoster: %v", err)
	}

	// Stale version must lose.
	if err := r.UpdateRoster(ctx, "s1", 0, roster); err != ErrVersionConflict {
		t.Errorf("stale UpdateRoster: want ErrVersionConflict, got %v", err)
	}

	// A missing session is not a version conflict; retrying cannot fix it.
	if err := r.UpdateRoster(ctx, "missing", 0, roster); err != ErrNotFound {
		t.Errorf("absent UpdateRoster: want ErrNotFound, got %v", err)
	}

	got, _ := r.GetByID(ctx, "s1")
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if len(got.Roster) != 1 || got.Roster[0].UserID != "u1" {
		t.Errorf("Roster = %v", got.Roster)
	}
}

func TestMemoryRepository_List(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	late := testSession("late")
	late.StartTime = late.StartTime.Add(2 * time.Hour)
	late.EndTime = late.EndTime.Add(2 * time.Hour)
	if err := r.Create(ctx, late); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Create(ctx, testSession("early")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "early" || list[1].ID != "late" {
		t.Errorf("List order = %v", []string{list[0].ID, list[1].ID})
	}
}
