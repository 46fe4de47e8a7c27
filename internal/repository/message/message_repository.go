// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(msg); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation for channel ID %d: %v", msg.ChannelID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %d for channel: %d", msg.ID, msg.ChannelID)
	return msg, nil
}

// CreateReply inserts the reply and its thread link atomically; one row per
// reply, never orphaned on either side.
func (r *gormMessageRepository) CreateReply(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(msg); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if msg.ParentMessageID == nil || *msg.ParentMessageID == 0 {
		return nil, errors.New("reply requires a parent message ID")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		link := &domain.ThreadLink{ParentID: *msg.ParentMessageID, ReplyID: msg.ID}
		return tx.Create(link).Error
	})
	if err != nil {
		log.Printf("[MessageRepository] Database error during reply creation for parent ID %d: %v", *msg.ParentMessageID, err)
		return nil, errors.New("database error creating reply")
	}

	return msg, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID uint) (*domain.Message, error) {
	if messageID == 0 {
		return nil, errors.New("invalid message ID")
	}

	var msg domain.Message
	err := r.db.WithContext(ctx).First(&msg, messageID).Error
	return r.handleFindError(err, &msg, "FindByID")
}

func (r *gormMessageRepository) Update(ctx context.Context, msg *domain.Message) error {
	if msg.ID == 0 {
		return errors.New("invalid message ID")
	}
	if err := r.validateMessageInput(msg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := r.db.WithContext(ctx).Save(msg)
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error updating message ID %d: %v", msg.ID, result.Error)
		return errors.New("database error updating message")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	return nil
}

// SoftDelete flips is_deleted. Reactions and thread links are untouched;
// reconciliation is the admin sweep's job.
func (r *gormMessageRepository) SoftDelete(ctx context.Context, messageID uint) error {
	if messageID == 0 {
		return errors.New("invalid message ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND is_deleted = ?", messageID, false).
		Update("is_deleted", true)
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error soft-deleting message ID %d: %v", messageID, result.Error)
		return errors.New("database error deleting message")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	log.Printf("[MessageRepository] Message soft-deleted: ID %d", messageID)
	return nil
}

// ListTopLevel pages newest-first by (created_at, id); the id cursor keeps
// pages stable under concurrent inserts.
func (r *gormMessageRepository) ListTopLevel(ctx context.Context, channelID uint, limit int, beforeID uint) ([]domain.Message, error) {
	if channelID == 0 {
		return nil, errors.New("invalid channel ID")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).
		Where("channel_id = ? AND parent_message_id IS NULL AND is_deleted = ?", channelID, false)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var messages []domain.Message
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error in paginated query for channel ID %d: %v", channelID, err)
		return nil, errors.New("database error retrieving channel messages")
	}

	return messages, nil
}

func (r *gormMessageRepository) FindThreadReplies(ctx context.Context, parentID uint) ([]domain.Message, error) {
	if parentID == 0 {
		return nil, errors.New("invalid parent message ID")
	}

	var replies []domain.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN thread_links ON thread_links.reply_id = messages.id").
		Where("thread_links.parent_id = ? AND messages.is_deleted = ?", parentID, false).
		Order("messages.created_at ASC, messages.id ASC").
		Find(&replies).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding replies for parent ID %d: %v", parentID, err)
		return nil, errors.New("database error finding thread replies")
	}

	return replies, nil
}

// ToggleBookmark reads and rewrites the bookmark set inside a transaction;
// repeated calls just flip the state back.
func (r *gormMessageRepository) ToggleBookmark(ctx context.Context, messageID, userID uint) (bool, error) {
	if messageID == 0 || userID == 0 {
		return false, errors.New("invalid message ID or user ID")
	}

	var bookmarked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg domain.Message
		if err := tx.First(&msg, messageID).Error; err != nil {
			return err
		}
		if msg.IsDeleted {
			return gorm.ErrRecordNotFound
		}

		next := make([]uint, 0, len(msg.BookmarkedBy)+1)
		for _, id := range msg.BookmarkedBy {
			if id != userID {
				next = append(next, id)
			}
		}
		if len(next) == len(msg.BookmarkedBy) {
			next = append(next, userID)
			bookmarked = true
		}

		return tx.Model(&domain.Message{}).
			Where("id = ?", messageID).
			Update("bookmarked_by", next).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrMessageNotFound
		}
		log.Printf("[MessageRepository] Database error toggling bookmark on message ID %d: %v", messageID, err)
		return false, errors.New("database error toggling bookmark")
	}

	return bookmarked, nil
}

func (r *gormMessageRepository) SetPinned(ctx context.Context, messageID uint, pinned bool) error {
	if messageID == 0 {
		return errors.New("invalid message ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND is_deleted = ?", messageID, false).
		Update("is_pinned", pinned)
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error pinning message ID %d: %v", messageID, result.Error)
		return errors.New("database error updating pin state")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	return nil
}

// Search is a case-insensitive substring filter over one channel's content.
// Not ranked, not semantic; the search agent owns that.
func (r *gormMessageRepository) Search(ctx context.Context, channelID uint, term string, limit int) ([]domain.Message, error) {
	if channelID == 0 {
		return nil, errors.New("invalid channel ID")
	}
	if err := r.validateSearchTerm(term); err != nil {
		return nil, fmt.Errorf("invalid search term: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	// Explicit LOWER on both sides: sqlite's bare LIKE is only
	// case-insensitive for ASCII and only by driver default.
	pattern := "%" + escapeLike(term) + "%"
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND is_deleted = ? AND LOWER(content) LIKE LOWER(?) ESCAPE '\\'", channelID, false, pattern).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error searching content for channel ID %d: %v", channelID, err)
		return nil, errors.New("database error searching messages")
	}

	return messages, nil
}

// LatestInChannels fetches the newest non-deleted message per channel in
// one query instead of N.
func (r *gormMessageRepository) LatestInChannels(ctx context.Context, channelIDs []uint) (map[uint]domain.Message, error) {
	if len(channelIDs) == 0 {
		return map[uint]domain.Message{}, nil
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("id IN (?)",
			r.db.Model(&domain.Message{}).
				Select("MAX(id)").
				Where("channel_id IN ? AND is_deleted = ?", channelIDs, false).
				Group("channel_id"),
		).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error fetching latest messages: %v", err)
		return nil, errors.New("database error fetching latest messages")
	}

	latest := make(map[uint]domain.Message, len(messages))
	for _, m := range messages {
		latest[m.ChannelID] = m
	}
	return latest, nil
}

func (r *gormMessageRepository) CountUnread(ctx context.Context, channelID, readerID uint, since *time.Time) (int64, error) {
	if channelID == 0 || readerID == 0 {
		return 0, errors.New("invalid channel ID or reader ID")
	}

	query := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("channel_id = ? AND is_deleted = ? AND author_id <> ?", channelID, false, readerID)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		log.Printf("[MessageRepository] Database error counting unread for channel ID %d: %v", channelID, err)
		return 0, errors.New("database error counting unread messages")
	}

	return count, nil
}

// CountUnreadByChannels joins the reader's read markers so rendering N
// conversations costs one round trip, not N.
func (r *gormMessageRepository) CountUnreadByChannels(ctx context.Context, readerID uint, channelIDs []uint) (map[uint]int64, error) {
	if readerID == 0 {
		return nil, errors.New("invalid reader ID")
	}
	counts := make(map[uint]int64, len(channelIDs))
	if len(channelIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ChannelID uint
		Unread    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Select("messages.channel_id AS channel_id, COUNT(*) AS unread").
		Joins("LEFT JOIN read_markers ON read_markers.channel_id = messages.channel_id AND read_markers.user_id = ?", readerID).
		Where("messages.channel_id IN ? AND messages.is_deleted = ? AND messages.author_id <> ?", channelIDs, false, readerID).
		Where("read_markers.last_read_at IS NULL OR messages.created_at > read_markers.last_read_at").
		Group("messages.channel_id").
		Scan(&rows).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error in batched unread count for user %d: %v", readerID, err)
		return nil, errors.New("database error counting unread messages")
	}

	for _, r := range rows {
		counts[r.ChannelID] = r.Unread
	}
	return counts, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(msg *domain.Message) error {
	if msg == nil {
		return errors.New("message cannot be nil")
	}
	if msg.ChannelID == 0 {
		return errors.New("channel ID is required")
	}
	if msg.AuthorID == 0 {
		return errors.New("author ID is required")
	}
	return r.validateMessageContent(msg.Content)
}

func (r *gormMessageRepository) validateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message content cannot be empty")
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageContentLength {
		return fmt.Errorf("message content too long (max %d characters)", domain.MaxMessageContentLength)
	}
	return nil
}

func (r *gormMessageRepository) validateSearchTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return errors.New("search term cannot be empty")
	}
	if len(term) > 100 {
		return errors.New("search term too long")
	}
	return nil
}

// escapeLike neutralizes LIKE wildcards so the term is matched literally.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

// ===== ERROR HANDLING HELPERS =====

func (r *gormMessageRepository) handleFindError(err error, msg *domain.Message, operation string) (*domain.Message, error) {
	if err == nil {
		return msg, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}

	log.Printf("[MessageRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
