// File: internal/repository/reaction/reaction_repository.go
package reaction

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/huddlehq/huddle/internal/domain"
)

type gormReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &gormReactionRepository{db: db}
}

// Upsert relies on the (message_id, user_id) unique index: a second emoji
// from the same user replaces the first.
func (r *gormReactionRepository) Upsert(ctx context.Context, messageID, userID uint, emoji string) error {
	if messageID == 0 || userID == 0 {
		return errors.New("invalid message ID or user ID")
	}
	if emoji == "" || len(emoji) > 32 {
		return errors.New("invalid emoji")
	}

	reaction := &domain.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "created_at"}),
		}).
		Create(reaction).Error
	if err != nil {
		log.Printf("[ReactionRepository] Database error upserting reaction on message ID %d: %v", messageID, err)
		return errors.New("database error saving reaction")
	}

	return nil
}

func (r *gormReactionRepository) Remove(ctx context.Context, messageID, userID uint) (bool, error) {
	if messageID == 0 || userID == 0 {
		return false, errors.New("invalid message ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Delete(&domain.Reaction{})
	if result.Error != nil {
		log.Printf("[ReactionRepository] Database error removing reaction on message ID %d: %v", messageID, result.Error)
		return false, errors.New("database error removing reaction")
	}

	return result.RowsAffected > 0, nil
}

func (r *gormReactionRepository) FindByMessageID(ctx context.Context, messageID uint) ([]domain.Reaction, error) {
	if messageID == 0 {
		return nil, errors.New("invalid message ID")
	}
	return r.find(ctx, []uint{messageID})
}

// FindByMessageIDs is the batched fetch behind bulk rollups: one IN query
// for the whole page, never a query per message.
func (r *gormReactionRepository) FindByMessageIDs(ctx context.Context, messageIDs []uint) ([]domain.Reaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, messageIDs)
}

func (r *gormReactionRepository) find(ctx context.Context, messageIDs []uint) ([]domain.Reaction, error) {
	var reactions []domain.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIDs).
		Order("message_id ASC, created_at ASC, id ASC").
		Find(&reactions).Error
	if err != nil {
		log.Printf("[ReactionRepository] Database error fetching reactions: %v", err)
		return nil, errors.New("database error fetching reactions")
	}
	return reactions, nil
}

// DeleteOrphaned is the reconciliation sweep for reactions left behind by
// soft-deleted messages. Soft-delete never cascades at write time, so the
// rows stay valid until an operator runs the sweep.
func (r *gormReactionRepository) DeleteOrphaned(ctx context.Context, deletedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("message_id IN (?)",
			r.db.Model(&domain.Message{}).
				Select("id").
				Where("is_deleted = ? AND updated_at < ?", true, deletedBefore),
		).
		Delete(&domain.Reaction{})
	if result.Error != nil {
		log.Printf("[ReactionRepository] Database error sweeping orphaned reactions: %v", result.Error)
		return 0, errors.New("database error sweeping orphaned reactions")
	}

	if result.RowsAffected > 0 {
		log.Printf("[ReactionRepository] Swept %d orphaned reactions", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
