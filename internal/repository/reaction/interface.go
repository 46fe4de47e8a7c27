// File: internal/repository/reaction/interface.go
package reaction

import (
	"context"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
)

type ReactionRepository interface {
	// Upsert inserts or replaces the (message, user) reaction.
	Upsert(ctx context.Context, messageID, userID uint, emoji string) error
	// Remove deletes the user's reaction; false when none existed.
	Remove(ctx context.Context, messageID, userID uint) (bool, error)
	FindByMessageID(ctx context.Context, messageID uint) ([]domain.Reaction, error)
	// FindByMessageIDs fetches reactions for many messages in one query.
	FindByMessageIDs(ctx context.Context, messageIDs []uint) ([]domain.Reaction, error)
	// DeleteOrphaned removes reactions whose message was soft-deleted and
	// last touched before the cutoff. Returns rows removed.
	DeleteOrphaned(ctx context.Context, deletedBefore time.Time) (int64, error)
}
