// File: internal/services/reaction_service.go
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/repository/message"
	"github.com/huddlehq/huddle/internal/repository/reaction"
	"github.com/huddlehq/huddle/internal/services/core"
)

const maxEmojiLength = 32

// ReactionService owns per-message, per-user reactions and their
// emoji rollups.
type ReactionService struct {
	reactionRepo reaction.ReactionRepository
	messageRepo  message.MessageRepository
	bus          realtime.Bus
	logger       Logger
}

func NewReactionService(
	reactionRepo reaction.ReactionRepository,
	messageRepo message.MessageRepository,
	bus realtime.Bus,
	logger Logger,
) (*ReactionService, error) {
	if reactionRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "reaction repository is required")
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

	return &ReactionService{
		reactionRepo: reactionRepo,
		messageRepo:  messageRepo,
		bus:          bus,
		logger:       logger,
	}, nil
}

// AddOrReplace upserts the user's reaction: a user holds at most one
// reaction per message, a new emoji replaces the old one.
func (s *ReactionService) AddOrReplace(ctx context.Context, messageID, userID uint, emoji string) error {
	const op = "add_reaction"

	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return core.NewInvalidArgumentError(op, "emoji cannot be empty")
	}
	if len(emoji) > maxEmojiLength {
		return core.NewInvalidArgumentError(op, "emoji too long")
	}
	msg, err := s.visibleMessage(ctx, op, messageID)
	if err != nil {
		return err
	}

	if err := s.reactionRepo.Upsert(ctx, messageID, userID, emoji); err != nil {
		return core.NewUnavailableError(op, "could not save reaction", err)
	}

	s.emit(ctx, realtime.NewEvent(realtime.EventReactionUpdated, msg.ChannelID, userID, map[string]interface{}{
		"message_id": messageID,
		"emoji":      emoji,
	}))
	return nil
}

// Remove deletes the user's reaction. Returns false, not an error,
// when there was nothing to remove.
func (s *ReactionService) Remove(ctx context.Context, messageID, userID uint) (bool, error) {
	const op = "remove_reaction"

	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return false, core.NewNotFoundError(op, "message not found")
		}
		return false, core.NewUnavailableError(op, "could not load message", err)
	}

	removed, err := s.reactionRepo.Remove(ctx, messageID, userID)
	if err != nil {
		return false, core.NewUnavailableError(op, "could not remove reaction", err)
	}
	if removed {
		s.emit(ctx, realtime.NewEvent(realtime.EventReactionRemoved, msg.ChannelID, userID, map[string]interface{}{
			"message_id": messageID,
		}))
	}
	return removed, nil
}

// Rollup groups a message's reactions by emoji, sorted by count
// descending with ties broken by emoji code-point order.
func (s *ReactionService) Rollup(ctx context.Context, messageID uint) ([]domain.ReactionRollup, error) {
	const op = "reaction_rollup"

	reactions, err := s.reactionRepo.FindByMessageID(ctx, messageID)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not load reactions", err)
	}
	return buildRollups(reactions), nil
}

// BulkRollup computes rollups for a page of messages from one batched
// query; rendering N messages must not cost N round trips.
func (s *ReactionService) BulkRollup(ctx context.Context, messageIDs []uint) (map[uint][]domain.ReactionRollup, error) {
	const op = "bulk_reaction_rollup"

	rollups := make(map[uint][]domain.ReactionRollup, len(messageIDs))
	if len(messageIDs) == 0 {
		return rollups, nil
	}

	reactions, err := s.reactionRepo.FindByMessageIDs(ctx, messageIDs)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not load reactions", err)
	}

	byMessage := make(map[uint][]domain.Reaction)
	for _, r := range reactions {
		byMessage[r.MessageID] = append(byMessage[r.MessageID], r)
	}
	for _, id := range messageIDs {
		rollups[id] = buildRollups(byMessage[id])
	}
	return rollups, nil
}

func (s *ReactionService) visibleMessage(ctx context.Context, op string, messageID uint) (*domain.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return nil, core.NewNotFoundError(op, "message not found")
		}
		return nil, core.NewUnavailableError(op, "could not load message", err)
	}
	if msg.IsDeleted {
		return nil, core.NewNotFoundError(op, "message not found")
	}
	return msg, nil
}

func (s *ReactionService) emit(ctx context.Context, event realtime.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event", event.Name, "channel_id", event.ChannelID, "error", err)
	}
}

// buildRollups groups reactions by emoji. Input order (created_at
// ascending within a message) carries into each rollup's user list.
func buildRollups(reactions []domain.Reaction) []domain.ReactionRollup {
	if len(reactions) == 0 {
		return []domain.ReactionRollup{}
	}

	byEmoji := make(map[string]*domain.ReactionRollup)
	order := make([]string, 0)
	for _, r := range reactions {
		entry, ok := byEmoji[r.Emoji]
		if !ok {
			entry = &domain.ReactionRollup{Emoji: r.Emoji}
			byEmoji[r.Emoji] = entry
			order = append(order, r.Emoji)
		}
		entry.Count++
		entry.Users = append(entry.Users, r.UserID)
	}

	rollups := make([]domain.ReactionRollup, 0, len(order))
	for _, emoji := range order {
		rollups = append(rollups, *byEmoji[emoji])
	}
	sort.SliceStable(rollups, func(i, j int) bool {
		if rollups[i].Count != rollups[j].Count {
			return rollups[i].Count > rollups[j].Count
		}
		return rollups[i].Emoji < rollups[j].Emoji
	})
	return rollups
}
