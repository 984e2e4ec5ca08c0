package repository

import (
	"context"

	"webinar-platform/backend/internal/user/domain"
)

// Repository is the read side of the user directory, plus Create for seeding.
type Repository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists a user.
	Create(ctx context.Context, u *domain.User) error
}
