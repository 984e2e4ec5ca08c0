package repository

import (
	"context"

	"webinar-platform/backend/internal/group/domain"
)

// Repository is the read side of the group directory, plus Create for seeding.
type Repository interface {
	// GroupsOf returns the ids of all groups the user belongs to.
	GroupsOf(ctx context.Context, userID string) ([]string, error)
	// GetByID returns the group for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	// Create persists a group with its members.
	Create(ctx context.Context, g *domain.Group) error
}
