package repository

import (
	"context"
	"database/sql"
	"errors"

	"webinar-platform/backend/internal/audit/domain"
)

// PostgresRepository persists audit logs to the audit_logs table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	a := &domain.AuditLog{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, action, resource, ip, metadata, created_at
		 FROM audit_logs WHERE id = $1;`, id,
	).Scan(&a.ID, &a.SessionID, &a.UserID, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListBySession returns audit logs for the given session, newest first,
// paginated by limit and offset.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, action, resource, ip, metadata, created_at
		 FROM audit_logs WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		a := &domain.AuditLog{}
		if err := rows.Scan(&a.ID, &a.SessionID, &a.UserID, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, session_id, user_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		a.ID, a.SessionID, a.UserID, a.Action, a.Resource, a.IP, a.Metadata, a.CreatedAt.UTC())
	return err
}
