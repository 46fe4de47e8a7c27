// File: internal/repository/channel/interface.go
package channel

import (
	"context"

	"github.com/huddlehq/huddle/internal/domain"
)

type ChannelRepository interface {
	// CreateWithOwner inserts the channel and the owner's admin membership
	// as one transaction. Returns ErrDuplicateName when an active channel
	// already holds the name.
	CreateWithOwner(ctx context.Context, ch *domain.Channel) (*domain.Channel, error)
	FindByID(ctx context.Context, channelID uint) (*domain.Channel, error)
	// FindActiveDirectByName looks up a non-deleted direct channel by its
	// derived name. Channels of other visibilities never match, so a
	// same-named public or private channel cannot stand in for the pair's
	// direct channel.
	FindActiveDirectByName(ctx context.Context, name string) (*domain.Channel, error)
	FindByIDs(ctx context.Context, channelIDs []uint) ([]domain.Channel, error)
	ListForUser(ctx context.Context, userID uint) ([]domain.Channel, error)
	ListPublic(ctx context.Context, limit int) ([]domain.Channel, error)
	SoftDelete(ctx context.Context, channelID uint) error
	TouchUpdatedAt(ctx context.Context, channelID uint) error
}
