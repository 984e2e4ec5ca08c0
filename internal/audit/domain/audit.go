package domain

import "time"

// AuditLog represents an audit event scoped to a session.
type AuditLog struct {
	ID        string
	SessionID string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
