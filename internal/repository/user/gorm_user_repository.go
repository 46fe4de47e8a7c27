// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create - Enhanced with input validation and secure logging
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.validateUserInput(user); err != nil {
		log.Printf("[UserRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Printf("[UserRepository] Database error during user creation: %v", err)
		return nil, errors.New("database error creating user")
	}

	log.Printf("[UserRepository] User created successfully with ID: %d", user.ID)
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user)
}

// FindByIDs resolves many identities at once for the conversation view.
func (r *gormUserRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]domain.User, error) {
	users := make(map[uint]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []domain.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		log.Printf("[UserRepository] Database error fetching users by IDs: %v", err)
		return nil, errors.New("database error fetching users")
	}

	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username is required")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("invalid user")
	}

	result := r.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error updating user ID %d: %v", user.ID, result.Error)
		return errors.New("database error updating user")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, userID uint) error {
	if userID == 0 {
		return errors.New("invalid user ID")
	}

	result := r.db.WithContext(ctx).Delete(&domain.User{}, userID)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error deleting user ID %d: %v", userID, result.Error)
		return errors.New("database error deleting user")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	log.Printf("[UserRepository] User deleted: ID %d", userID)
	return nil
}

func (r *gormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	if err != nil {
		log.Printf("[UserRepository] Database error listing users: %v", err)
		return nil, errors.New("database error listing users")
	}
	return users, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormUserRepository) validateUserInput(user *domain.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	return user.IsValid()
}

// ===== ERROR HANDLING HELPERS =====

func (r *gormUserRepository) handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	log.Printf("[UserRepository] Database error: %v", err)
	return nil, errors.New("database query failed")
}
