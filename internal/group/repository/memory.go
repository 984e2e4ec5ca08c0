package repository

import (
	"context"
	"sync"

	"webinar-platform/backend/internal/group/domain"
)

// MemoryRepository is an in-memory group directory for development and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group
}

// NewMemoryRepository returns an empty in-memory group directory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{groups: make(map[string]*domain.Group)}
}

var _ Repository = (*MemoryRepository)(nil)

// GroupsOf returns the ids of all groups the user belongs to.
func (r *MemoryRepository) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, g := range r.groups {
		for _, m := range g.MemberIDs {
			if m == userID {
				out = append(out, g.ID)
				break
			}
		}
	}
	return out, nil
}

// GetByID returns the group for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	c := *g
	c.MemberIDs = append([]string(nil), g.MemberIDs...)
	return &c, nil
}

// Create stores a copy of the group.
func (r *MemoryRepository) Create(ctx context.Context, g *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *g
	c.MemberIDs = append([]string(nil), g.MemberIDs...)
	r.groups[c.ID] = &c
	return nil
}
