package repository

import (
	"context"
	"sort"
	"sync"

	"webinar-platform/backend/internal/audit/domain"
)

// MemoryRepository is an in-memory audit log store for tests and local runs
// without a database.
type MemoryRepository struct {
	mu   sync.Mutex
	logs map[string]*domain.AuditLog
}

// NewMemoryRepository returns an empty in-memory audit log repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{logs: make(map[string]*domain.AuditLog)}
}

var _ Repository = (*MemoryRepository)(nil)

// GetByID returns the audit log for id, or nil if not found.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.logs[id]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

// ListBySession returns audit logs for the given session, newest first,
// paginated by limit and offset.
func (r *MemoryRepository) ListBySession(_ context.Context, sessionID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.AuditLog
	for _, a := range r.logs {
		if a.SessionID == sessionID {
			clone := *a
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if int(offset) >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if int(limit) < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Create stores the audit log.
func (r *MemoryRepository) Create(_ context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *a
	r.logs[a.ID] = &clone
	return nil
}
