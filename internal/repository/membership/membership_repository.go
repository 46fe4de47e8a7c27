// File: internal/repository/membership/membership_repository.go
package membership

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/domain"
)

var ErrMembershipNotFound = errors.New("membership not found")

type gormMembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &gormMembershipRepository{db: db}
}

// Add attempts the insert and treats a unique violation on
// (channel_id, user_id) as "already a member", not an error.
func (r *gormMembershipRepository) Add(ctx context.Context, channelID, userID uint, role string) (bool, error) {
	if channelID == 0 || userID == 0 {
		return false, errors.New("invalid channel ID or user ID")
	}
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return false, errors.New("invalid membership role")
	}

	member := &domain.Membership{ChannelID: channelID, UserID: userID, Role: role}
	err := r.db.WithContext(ctx).Create(member).Error
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		log.Printf("[MembershipRepository] Database error adding user %d to channel %d: %v", userID, channelID, err)
		return false, errors.New("database error adding member")
	}

	log.Printf("[MembershipRepository] User %d joined channel %d as %s", userID, channelID, role)
	return true, nil
}

func (r *gormMembershipRepository) Remove(ctx context.Context, channelID, userID uint) (bool, error) {
	if channelID == 0 || userID == 0 {
		return false, errors.New("invalid channel ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&domain.Membership{})
	if result.Error != nil {
		log.Printf("[MembershipRepository] Database error removing user %d from channel %d: %v", userID, channelID, result.Error)
		return false, errors.New("database error removing member")
	}

	return result.RowsAffected > 0, nil
}

// IsMember is a pure capability check: whether the relationship exists.
// Authorization decisions belong to the calling layer.
func (r *gormMembershipRepository) IsMember(ctx context.Context, channelID, userID uint) (bool, error) {
	return r.exists(ctx, channelID, userID, "")
}

func (r *gormMembershipRepository) IsAdmin(ctx context.Context, channelID, userID uint) (bool, error) {
	return r.exists(ctx, channelID, userID, domain.RoleAdmin)
}

func (r *gormMembershipRepository) FindByChannelID(ctx context.Context, channelID uint) ([]domain.Membership, error) {
	if channelID == 0 {
		return nil, errors.New("invalid channel ID")
	}

	var members []domain.Membership
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		log.Printf("[MembershipRepository] Database error listing members for channel %d: %v", channelID, err)
		return nil, errors.New("database error listing members")
	}

	return members, nil
}

func (r *gormMembershipRepository) FindForUserByVisibility(ctx context.Context, userID uint, visibility string) ([]domain.Membership, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var members []domain.Membership
	err := r.db.WithContext(ctx).
		Joins("JOIN channels ON channels.id = memberships.channel_id").
		Where("memberships.user_id = ? AND channels.visibility = ? AND channels.deleted_at IS NULL", userID, visibility).
		Find(&members).Error
	if err != nil {
		log.Printf("[MembershipRepository] Database error listing %s memberships for user %d: %v", visibility, userID, err)
		return nil, errors.New("database error listing memberships")
	}

	return members, nil
}

func (r *gormMembershipRepository) exists(ctx context.Context, channelID, userID uint, role string) (bool, error) {
	if channelID == 0 || userID == 0 {
		return false, errors.New("invalid channel ID or user ID")
	}

	query := r.db.WithContext(ctx).Model(&domain.Membership{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		log.Printf("[MembershipRepository] Database error checking membership for user %d in channel %d: %v", userID, channelID, err)
		return false, errors.New("database error checking membership")
	}

	return count > 0, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
