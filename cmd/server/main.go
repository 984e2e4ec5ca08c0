// server runs the webinar session access HTTP API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webinar-platform/backend/internal/accesstoken"
	"webinar-platform/backend/internal/attendance"
	"webinar-platform/backend/internal/audit"
	auditrepo "webinar-platform/backend/internal/audit/repository"
	"webinar-platform/backend/internal/config"
	"webinar-platform/backend/internal/db"
	grouprepo "webinar-platform/backend/internal/group/repository"
	"webinar-platform/backend/internal/join"
	"webinar-platform/backend/internal/platform/sessionlock"
	"webinar-platform/backend/internal/roster"
	"webinar-platform/backend/internal/security"
	"webinar-platform/backend/internal/server"
	sessionrepo "webinar-platform/backend/internal/session/repository"
	"webinar-platform/backend/internal/telemetry"
	"webinar-platform/backend/internal/telemetry/producer"
	userrepo "webinar-platform/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTPrivateKey == "" {
		log.Fatal("JWT_PRIVATE_KEY is not set; create a .env from .env.example or set JWT_PRIVATE_KEY")
	}
	key, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("parse signing key: %v", err)
	}

	var (
		sessions join.SessionReader
		lister   server.SessionLister
		groups   join.GroupDirectory
		users    join.UserDirectory
		audits   auditrepo.Repository
		store    roster.SessionStore
		ping     func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		repo := sessionrepo.NewPostgresRepository(conn)
		sessions, lister, store = repo, repo, repo
		groups = grouprepo.NewPostgresRepository(conn)
		users = userrepo.NewPostgresRepository(conn)
		audits = auditrepo.NewPostgresRepository(conn)
		ping = conn.PingContext
		log.Println("using postgres store")
	} else {
		repo := sessionrepo.NewMemoryRepository()
		sessions, lister, store = repo, repo, repo
		groups = grouprepo.NewMemoryRepository()
		users = userrepo.NewMemoryRepository()
		audits = auditrepo.NewMemoryRepository()
		log.Println("DATABASE_URL not set; using in-memory store")
	}

	var emitter telemetry.EventEmitter
	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.AttendanceKafkaTopic)
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}
	if kafkaProducer != nil {
		emitter = kafkaProducer
		defer kafkaProducer.Close()
		log.Printf("attendance telemetry enabled (topic %s)", cfg.AttendanceKafkaTopic)
	}

	locks := sessionlock.NewTable()
	rosterMgr := roster.NewManager(store, locks)
	tracker := attendance.NewTracker(store, locks)
	issuer := accesstoken.NewIssuer(key, cfg.ConferenceAppID, cfg.ConferenceIssuer, cfg.ConferenceAudience)
	auditor := audit.NewLogger(audits, server.ClientIP)
	access := join.NewService(sessions, groups, users, rosterMgr, tracker, tracker,
		issuer, cfg.JoinBuffer(), auditor, emitter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(access, rosterMgr, lister, auditor, ping).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if emitter != nil {
		// Let in-flight async telemetry emits finish before the producer closes.
		time.Sleep(telemetry.ShutdownDrainDuration)
	}
	log.Println("HTTP server stopped")
}
