// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"fmt"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/repository/user"
)

// UserService composes authentication with the identity lookups the
// conversation layer needs (profile resolution for counterparts).
type UserService struct {
	*AuthService
	userRepo user.UserRepository
}

func NewUserService(userRepo user.UserRepository, jwtSecret, adminEmail string, logger Logger) *UserService {
	return &UserService{
		AuthService: NewAuthService(userRepo, jwtSecret, adminEmail, logger),
		userRepo:    userRepo,
	}
}

// GetProfile resolves a user's identity.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user with ID %d: %w", userID, err)
	}
	return account, nil
}

// GetProfiles resolves many identities in one query.
func (s *UserService) GetProfiles(ctx context.Context, userIDs []uint) (map[uint]domain.User, error) {
	profiles, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile saves display name and avatar changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, displayName, avatarURL string) (*domain.User, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user with ID %d: %w", userID, err)
	}

	if displayName != "" {
		account.DisplayName = displayName
	}
	if avatarURL != "" {
		account.AvatarURL = avatarURL
	}
	if err := s.userRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return account, nil
}
