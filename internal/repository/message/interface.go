// File: internal/repository/message/interface.go
package message

import (
	"context"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	// CreateReply writes the reply and its thread link in one transaction.
	CreateReply(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, messageID uint) (*domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	SoftDelete(ctx context.Context, messageID uint) error
	// ListTopLevel pages non-deleted top-level messages newest first.
	// beforeID == 0 means "from the newest".
	ListTopLevel(ctx context.Context, channelID uint, limit int, beforeID uint) ([]domain.Message, error)
	// FindThreadReplies returns all non-deleted replies linked to the
	// parent, oldest first.
	FindThreadReplies(ctx context.Context, parentID uint) ([]domain.Message, error)
	// ToggleBookmark flips userID's bookmark and returns the new state.
	ToggleBookmark(ctx context.Context, messageID, userID uint) (bool, error)
	SetPinned(ctx context.Context, messageID uint, pinned bool) error
	Search(ctx context.Context, channelID uint, term string, limit int) ([]domain.Message, error)
	// LatestInChannels fetches the newest non-deleted message per channel
	// in one query; channels with no visible messages are absent.
	LatestInChannels(ctx context.Context, channelIDs []uint) (map[uint]domain.Message, error)
	// CountUnread counts non-deleted messages newer than since and not
	// authored by the reader. A nil since counts every message.
	CountUnread(ctx context.Context, channelID, readerID uint, since *time.Time) (int64, error)
	// CountUnreadByChannels is the single-round-trip batch form; it joins
	// the reader's read markers so N channels cost one query.
	CountUnreadByChannels(ctx context.Context, readerID uint, channelIDs []uint) (map[uint]int64, error)
}
