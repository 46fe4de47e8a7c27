// File: internal/repository/readmarker/interface.go
package readmarker

import (
	"context"

	"github.com/huddlehq/huddle/internal/domain"
)

type ReadMarkerRepository interface {
	// Upsert writes the marker with lastReadAt = max(existing, now);
	// a stale client can never move the read position backwards.
	Upsert(ctx context.Context, userID, channelID uint, lastMessageID *uint) (*domain.ReadMarker, error)
	Find(ctx context.Context, userID, channelID uint) (*domain.ReadMarker, error)
	FindForUser(ctx context.Context, userID uint, channelIDs []uint) (map[uint]domain.ReadMarker, error)
}
