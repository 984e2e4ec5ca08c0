// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev session already exists.
package main

import (
	"context"
	"log"
	"time"

	"webinar-platform/backend/internal/config"
	"webinar-platform/backend/internal/db"
	groupdomain "webinar-platform/backend/internal/group/domain"
	grouprepo "webinar-platform/backend/internal/group/repository"
	sessiondomain "webinar-platform/backend/internal/session/domain"
	sessionrepo "webinar-platform/backend/internal/session/repository"
	userdomain "webinar-platform/backend/internal/user/domain"
	userrepo "webinar-platform/backend/internal/user/repository"
)

// Fixed UUIDs so reruns can detect existing fixtures.
const (
	devSessionID = "00000000-0000-4000-8000-0000000000d1"
	devGroupID   = "00000000-0000-4000-8000-0000000000e1"

	devSpeakerID  = "00000000-0000-4000-8000-000000000001"
	devRosteredID = "00000000-0000-4000-8000-000000000002"
	devMemberID   = "00000000-0000-4000-8000-000000000003"
	devMember2ID  = "00000000-0000-4000-8000-000000000004"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	sessions := sessionrepo.NewPostgresRepository(conn)

	existing, err := sessions.GetByID(ctx, devSessionID)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev session already present, nothing to do")
		return
	}

	users := userrepo.NewPostgresRepository(conn)
	for id, u := range map[string]userdomain.User{
		devSpeakerID:  {Name: "Dev Speaker", Email: "speaker@example.com"},
		devRosteredID: {Name: "Dev Rostered", Email: "rostered@example.com"},
		devMemberID:   {Name: "Dev Member", Email: "member@example.com"},
		devMember2ID:  {Name: "Dev Member Two", Email: "member2@example.com"},
	} {
		u.ID = id
		u.CreatedAt = time.Now().UTC()
		if err := users.Create(ctx, &u); err != nil {
			log.Fatalf("seed user %s: %v", id, err)
		}
	}

	groups := grouprepo.NewPostgresRepository(conn)
	err = groups.Create(ctx, &groupdomain.Group{
		ID:        devGroupID,
		Name:      "dev-engineering",
		MemberIDs: []string{devMemberID, devMember2ID},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("seed group: %v", err)
	}

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Minute)
	err = sessions.Create(ctx, &sessiondomain.Session{
		ID:              devSessionID,
		Title:           "Dev Webinar",
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		SpeakerID:       devSpeakerID,
		AllowedGroupIDs: []string{devGroupID},
		Capacity:        100,
		Roster: []sessiondomain.Participant{
			{UserID: devRosteredID, RegisteredAt: time.Now().UTC()},
		},
	})
	if err != nil {
		log.Fatalf("seed session: %v", err)
	}

	log.Printf("seed: created session %s (speaker %s, group %s)", devSessionID, devSpeakerID, devGroupID)
}
