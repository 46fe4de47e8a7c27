// File: internal/repository/membership/interface.go
package membership

import (
	"context"

	"github.com/huddlehq/huddle/internal/domain"
)

type MembershipRepository interface {
	// Add inserts a membership row. Returns false without error when the
	// user is already a member (idempotent).
	Add(ctx context.Context, channelID, userID uint, role string) (bool, error)
	Remove(ctx context.Context, channelID, userID uint) (bool, error)
	IsMember(ctx context.Context, channelID, userID uint) (bool, error)
	IsAdmin(ctx context.Context, channelID, userID uint) (bool, error)
	FindByChannelID(ctx context.Context, channelID uint) ([]domain.Membership, error)
	// FindForUserByVisibility returns the user's memberships restricted to
	// channels of the given visibility, active channels only.
	FindForUserByVisibility(ctx context.Context, userID uint, visibility string) ([]domain.Membership, error)
}
