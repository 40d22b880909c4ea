package repository

import (
	"context"

	"channelmarket/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	// SetRole mutates the role record through a conditional update so
	// concurrent role changes cannot clobber unrelated fields.
	SetRole(ctx context.Context, userID, role string) error
}
