package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"webinar-platform/backend/internal/session/domain"
)

// PostgresRepository persists sessions across the sessions,
// session_allowed_groups, and session_participants tables.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// GetByID returns the session for id with its roster, or nil if not found.
// It returns an error only for database failures, not for missing rows.
// A syntactically invalid id cannot match the UUID column, so it reports
// not-found rather than tripping the server-side cast.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	s := &domain.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, start_time, end_time, speaker_id, capacity, version, created_at
		 FROM sessions WHERE id = $1;`, id,
	).Scan(&s.ID, &s.Title, &s.StartTime, &s.EndTime, &s.SpeakerID, &s.Capacity, &s.Version, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if s.AllowedGroupIDs, err = r.allowedGroups(ctx, id); err != nil {
		return nil, err
	}
	if s.Roster, err = r.roster(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all sessions ordered by start time, rosters included.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, start_time, end_time, speaker_id, capacity, version, created_at
		 FROM sessions ORDER BY start_time, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s := &domain.Session{}
		if err := rows.Scan(&s.ID, &s.Title, &s.StartTime, &s.EndTime, &s.SpeakerID, &s.Capacity, &s.Version, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if s.AllowedGroupIDs, err = r.allowedGroups(ctx, s.ID); err != nil {
			return nil, err
		}
		if s.Roster, err = r.roster(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Create persists the session, its allowed groups, and any initial roster.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, start_time, end_time, speaker_id, capacity, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		s.ID, s.Title, s.StartTime.UTC(), s.EndTime.UTC(), s.SpeakerID, s.Capacity, s.Version, createdAt)
	if err != nil {
		return err
	}
	for _, g := range s.AllowedGroupIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_allowed_groups (session_id, group_id) VALUES ($1, $2);`, s.ID, g); err != nil {
			return err
		}
	}
	if err := insertRoster(ctx, tx, s.ID, s.Roster); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateRoster replaces the roster if version matches; bumps version on success.
func (r *PostgresRepository) UpdateRoster(ctx context.Context, sessionID string, expectedVersion int64, roster []domain.Participant) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET version = version + 1 WHERE id = $1 AND version = $2;`,
		sessionID, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1);`, sessionID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_participants WHERE session_id = $1;`, sessionID); err != nil {
		return err
	}
	if err := insertRoster(ctx, tx, sessionID, roster); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRoster(ctx context.Context, tx *sql.Tx, sessionID string, roster []domain.Participant) error {
	for _, p := range roster {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_participants
			 (session_id, user_id, registered_at, attended, attendance_time, exit_time, watch_duration_seconds)
			 VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			sessionID, p.UserID, p.RegisteredAt.UTC(), p.Attended,
			timeToNullTime(p.AttendanceTime), timeToNullTime(p.ExitTime), p.WatchDurationSeconds)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) allowedGroups(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT group_id FROM session_allowed_groups WHERE session_id = $1 ORDER BY group_id;`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) roster(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, registered_at, attended, attendance_time, exit_time, watch_duration_seconds
		 FROM session_participants WHERE session_id = $1 ORDER BY registered_at, user_id;`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var p domain.Participant
		var attendance, exit sql.NullTime
		if err := rows.Scan(&p.UserID, &p.RegisteredAt, &p.Attended, &attendance, &exit, &p.WatchDurationSeconds); err != nil {
			return nil, err
		}
		p.AttendanceTime = nullTimeToPtr(attendance)
		p.ExitTime = nullTimeToPtr(exit)
		out = append(out, p)
	}
	return out, rows.Err()
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
