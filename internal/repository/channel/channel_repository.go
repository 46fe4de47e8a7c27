// File: internal/repository/channel/channel_repository.go
package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/domain"
)

var ErrChannelNotFound = errors.New("channel not found")
var ErrDuplicateName = errors.New("active channel with this name already exists")

type gormChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &gormChannelRepository{db: db}
}

// CreateWithOwner inserts the channel row and the owner's admin membership
// in one transaction; both succeed or neither does. A unique violation on
// the active-name index surfaces as ErrDuplicateName so callers can run the
// insert-then-reread convergence for direct channels.
func (r *gormChannelRepository) CreateWithOwner(ctx context.Context, ch *domain.Channel) (*domain.Channel, error) {
	if err := r.validateChannelInput(ch); err != nil {
		log.Printf("[ChannelRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		member := &domain.Membership{
			ChannelID: ch.ID,
			UserID:    ch.OwnerID,
			Role:      domain.RoleAdmin,
		}
		return tx.Create(member).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		log.Printf("[ChannelRepository] Database error during channel creation for owner ID %d: %v", ch.OwnerID, err)
		return nil, errors.New("database error creating channel")
	}

	log.Printf("[ChannelRepository] Channel created successfully with ID: %d for owner: %d", ch.ID, ch.OwnerID)
	return ch, nil
}

func (r *gormChannelRepository) FindByID(ctx context.Context, channelID uint) (*domain.Channel, error) {
	if channelID == 0 {
		return nil, errors.New("invalid channel ID")
	}

	var ch domain.Channel
	err := r.db.WithContext(ctx).First(&ch, channelID).Error
	return r.handleFindError(err, &ch, "FindByID")
}

func (r *gormChannelRepository) FindActiveDirectByName(ctx context.Context, name string) (*domain.Channel, error) {
	if name == "" {
		return nil, errors.New("invalid channel name")
	}

	var ch domain.Channel
	err := r.db.WithContext(ctx).
		Where("name = ? AND visibility = ? AND deleted_at IS NULL", name, domain.ChannelDirect).
		First(&ch).Error
	return r.handleFindError(err, &ch, "FindActiveDirectByName")
}

func (r *gormChannelRepository) FindByIDs(ctx context.Context, channelIDs []uint) ([]domain.Channel, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}

	var channels []domain.Channel
	err := r.db.WithContext(ctx).
		Where("id IN ? AND deleted_at IS NULL", channelIDs).
		Find(&channels).Error
	if err != nil {
		log.Printf("[ChannelRepository] Database error fetching channels by IDs: %v", err)
		return nil, errors.New("database error fetching channels")
	}

	return channels, nil
}

// ListForUser returns the active channels the user is a member of, most
// recently active first.
func (r *gormChannelRepository) ListForUser(ctx context.Context, userID uint) ([]domain.Channel, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var channels []domain.Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.channel_id = channels.id").
		Where("memberships.user_id = ? AND channels.deleted_at IS NULL", userID).
		Order("channels.updated_at DESC, channels.id DESC").
		Find(&channels).Error
	if err != nil {
		log.Printf("[ChannelRepository] Database error listing channels for user ID %d: %v", userID, err)
		return nil, errors.New("database error listing user channels")
	}

	return channels, nil
}

func (r *gormChannelRepository) ListPublic(ctx context.Context, limit int) ([]domain.Channel, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var channels []domain.Channel
	err := r.db.WithContext(ctx).
		Where("visibility = ? AND deleted_at IS NULL", domain.ChannelPublic).
		Order("name ASC").
		Limit(limit).
		Find(&channels).Error
	if err != nil {
		log.Printf("[ChannelRepository] Database error listing public channels: %v", err)
		return nil, errors.New("database error listing public channels")
	}

	return channels, nil
}

// SoftDelete marks the channel deleted. The row stays so reactions and
// thread links referencing its messages remain valid.
func (r *gormChannelRepository) SoftDelete(ctx context.Context, channelID uint) error {
	if channelID == 0 {
		return errors.New("invalid channel ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Channel{}).
		Where("id = ? AND deleted_at IS NULL", channelID).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		log.Printf("[ChannelRepository] Database error soft-deleting channel ID %d: %v", channelID, result.Error)
		return errors.New("database error deleting channel")
	}
	if result.RowsAffected == 0 {
		return ErrChannelNotFound
	}

	log.Printf("[ChannelRepository] Channel soft-deleted: ID %d", channelID)
	return nil
}

// TouchUpdatedAt records channel activity; ListForUser sorts on it.
func (r *gormChannelRepository) TouchUpdatedAt(ctx context.Context, channelID uint) error {
	if channelID == 0 {
		return errors.New("invalid channel ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Channel{}).
		Where("id = ?", channelID).
		Update("updated_at", time.Now().UTC())
	if result.Error != nil {
		log.Printf("[ChannelRepository] Database error updating timestamp for channel ID %d: %v", channelID, result.Error)
		return errors.New("database error updating channel timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrChannelNotFound
	}

	return nil
}

// ===== VALIDATION HELPERS =====

func (r *gormChannelRepository) validateChannelInput(ch *domain.Channel) error {
	if ch == nil {
		return errors.New("channel cannot be nil")
	}
	if ch.OwnerID == 0 {
		return errors.New("owner ID is required")
	}
	if !domain.ValidChannelName(ch.Name) {
		return errors.New("channel name must be lowercase alphanumeric with hyphens, 1-80 characters")
	}
	switch ch.Visibility {
	case domain.ChannelPublic, domain.ChannelPrivate, domain.ChannelDirect:
	default:
		return fmt.Errorf("invalid channel visibility %q", ch.Visibility)
	}
	return nil
}

// ===== ERROR HANDLING HELPERS =====

func (r *gormChannelRepository) handleFindError(err error, ch *domain.Channel, operation string) (*domain.Channel, error) {
	if err == nil {
		return ch, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChannelNotFound
	}

	log.Printf("[ChannelRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}

// isUniqueViolation matches the unique-index errors the supported drivers
// produce (gorm's translated error plus the raw sqlite message).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
