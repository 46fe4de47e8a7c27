// File: internal/services/read_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/repository/message"
	"github.com/huddlehq/huddle/internal/repository/readmarker"
	"github.com/huddlehq/huddle/internal/services/core"
)

// ReadService owns per-user, per-channel read markers and the unread
// counts built on them.
type ReadService struct {
	readMarkerRepo readmarker.ReadMarkerRepository
	messageRepo    message.MessageRepository
	bus            realtime.Bus
	logger         Logger
}

func NewReadService(
	readMarkerRepo readmarker.ReadMarkerRepository,
	messageRepo message.MessageRepository,
	bus realtime.Bus,
	logger Logger,
) (*ReadService, error) {
	if readMarkerRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "read marker repository is required")
	}
	if messageRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "message repository is required")
	}
	if bus == nil {
		bus = realtime.NoOpBus{}
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ReadService{
		readMarkerRepo: readMarkerRepo,
		messageRepo:    messageRepo,
		bus:            bus,
		logger:         logger,
	}, nil
}

// MarkRead moves the caller's read position to now. The stored
// lastReadAt is max(existing, now): a stale client replaying an old
// mark can never move the position backwards.
func (s *ReadService) MarkRead(ctx context.Context, userID, channelID uint, lastMessageID *uint) (*domain.ReadMarker, error) {
	const op = "mark_read"

	if userID == 0 || channelID == 0 {
		return nil, core.NewInvalidArgumentError(op, "user ID and channel ID are required")
	}

	marker, err := s.readMarkerRepo.Upsert(ctx, userID, channelID, lastMessageID)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not save read marker", err)
	}

	s.emit(ctx, realtime.NewEvent(realtime.EventChannelRead, channelID, userID, map[string]interface{}{
		"last_read_at": marker.LastReadAt,
	}))
	return marker, nil
}

// UnreadCount counts non-deleted messages newer than the caller's read
// marker, excluding the caller's own. With no marker, every message
// counts.
func (s *ReadService) UnreadCount(ctx context.Context, userID, channelID uint) (int64, error) {
	const op = "unread_count"

	if userID == 0 || channelID == 0 {
		return 0, core.NewInvalidArgumentError(op, "user ID and channel ID are required")
	}

	marker, err := s.readMarkerRepo.Find(ctx, userID, channelID)
	if err != nil && !errors.Is(err, readmarker.ErrReadMarkerNotFound) {
		return 0, core.NewUnavailableError(op, "could not load read marker", err)
	}

	var since *time.Time
	if marker != nil {
		since = &marker.LastReadAt
	}
	count, err := s.messageRepo.CountUnread(ctx, channelID, userID, since)
	if err != nil {
		return 0, core.NewUnavailableError(op, "could not count unread messages", err)
	}
	return count, nil
}

// BatchUnreadCounts resolves unread counts for many channels in a
// single round trip.
func (s *ReadService) BatchUnreadCounts(ctx context.Context, userID uint, channelIDs []uint) (map[uint]int64, error) {
	const op = "batch_unread_counts"

	if userID == 0 {
		return nil, core.NewInvalidArgumentError(op, "user ID is required")
	}

	counts, err := s.messageRepo.CountUnreadByChannels(ctx, userID, channelIDs)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not count unread messages", err)
	}
	return counts, nil
}

func (s *ReadService) emit(ctx context.Context, event realtime.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event", event.Name, "channel_id", event.ChannelID, "error", err)
	}
}
