// File: internal/repository/user/interface.go
package user

import (
	"context"

	"github.com/huddlehq/huddle/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID uint) error
	FindAll(ctx context.Context) ([]domain.User, error)
}
