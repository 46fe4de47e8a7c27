// File: internal/services/conversation_service.go
package services

import (
	"context"
	"sort"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/repository/channel"
	"github.com/huddlehq/huddle/internal/repository/membership"
	"github.com/huddlehq/huddle/internal/repository/message"
	"github.com/huddlehq/huddle/internal/repository/user"
	"github.com/huddlehq/huddle/internal/services/core"
)

// DirectConversation is one row of the direct-message list: the
// counterpart, a last-message preview and the unread count.
type DirectConversation struct {
	ChannelID            uint            `json:"channel_id"`
	CounterpartID        uint            `json:"counterpart_id"`
	CounterpartName      string          `json:"counterpart_name"`
	CounterpartAvatarURL string          `json:"counterpart_avatar_url,omitempty"`
	LastMessage          *domain.Message `json:"last_message,omitempty"`
	LastActivityAt       time.Time       `json:"last_activity_at"`
	UnreadCount          int64           `json:"unread_count"`
}

// ConversationService is a read-only composition over memberships,
// channels, messages and read markers. It owns no records of its own.
type ConversationService struct {
	membershipRepo membership.MembershipRepository
	channelRepo    channel.ChannelRepository
	messageRepo    message.MessageRepository
	userRepo       user.UserRepository
	logger         Logger
}

func NewConversationService(
	membershipRepo membership.MembershipRepository,
	channelRepo channel.ChannelRepository,
	messageRepo message.MessageRepository,
	userRepo user.UserRepository,
	logger Logger,
) (*ConversationService, error) {
	if membershipRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "membership repository is required")
	}
	if channelRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "channel repository is required")
	}
	if messageRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "message repository is required")
	}
	if userRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "user repository is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ConversationService{
		membershipRepo: membershipRepo,
		channelRepo:    channelRepo,
		messageRepo:    messageRepo,
		userRepo:       userRepo,
		logger:         logger,
	}, nil
}

// ListDirectConversations builds one row per direct channel the user
// belongs to, sorted by last activity descending. Rows whose
// counterpart cannot be resolved (deleted account, empty channel) are
// excluded rather than failing the whole call.
func (s *ConversationService) ListDirectConversations(ctx context.Context, userID uint) ([]DirectConversation, error) {
	const op = "list_direct_conversations"

	if userID == 0 {
		return nil, core.NewInvalidArgumentError(op, "user ID is required")
	}

	memberships, err := s.membershipRepo.FindForUserByVisibility(ctx, userID, domain.ChannelDirect)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not list direct memberships", err)
	}
	if len(memberships) == 0 {
		return []DirectConversation{}, nil
	}

	// Duplicate membership rows for a channel would otherwise produce
	// duplicate conversation rows.
	seen := make(map[uint]bool, len(memberships))
	channelIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		if !seen[m.ChannelID] {
			seen[m.ChannelID] = true
			channelIDs = append(channelIDs, m.ChannelID)
		}
	}

	channels, err := s.channelRepo.FindByIDs(ctx, channelIDs)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not load direct channels", err)
	}

	counterparts := make(map[uint]uint, len(channels))
	counterpartIDs := make([]uint, 0, len(channels))
	activeIDs := make([]uint, 0, len(channels))
	activeChannels := make(map[uint]domain.Channel, len(channels))
	for _, ch := range channels {
		if ch.IsDeleted() {
			continue
		}
		other, ok := s.counterpartFor(ctx, ch.ID, userID)
		if !ok {
			continue
		}
		counterparts[ch.ID] = other
		counterpartIDs = append(counterpartIDs, other)
		activeIDs = append(activeIDs, ch.ID)
		activeChannels[ch.ID] = ch
	}
	if len(activeIDs) == 0 {
		return []DirectConversation{}, nil
	}

	identities, err := s.userRepo.FindByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not resolve counterpart identities", err)
	}
	latest, err := s.messageRepo.LatestInChannels(ctx, activeIDs)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not load latest messages", err)
	}
	unread, err := s.messageRepo.CountUnreadByChannels(ctx, userID, activeIDs)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not count unread messages", err)
	}

	conversations := make([]DirectConversation, 0, len(activeIDs))
	for _, channelID := range activeIDs {
		ch := activeChannels[channelID]
		counterpartID := counterparts[channelID]

		identity, ok := identities[counterpartID]
		if !ok {
			// Deleted account: drop the row, keep the rest.
			s.logger.Debug("skipping conversation with unresolved counterpart",
				"channel_id", channelID, "counterpart_id", counterpartID)
			continue
		}

		row := DirectConversation{
			ChannelID:            channelID,
			CounterpartID:        counterpartID,
			CounterpartName:      identity.DisplayName,
			CounterpartAvatarURL: identity.AvatarURL,
			LastActivityAt:       ch.CreatedAt,
			UnreadCount:          unread[channelID],
		}
		if row.CounterpartName == "" {
			row.CounterpartName = identity.Username
		}
		if m, ok := latest[channelID]; ok {
			msg := m
			row.LastMessage = &msg
			row.LastActivityAt = m.CreatedAt
		}
		conversations = append(conversations, row)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastActivityAt.After(conversations[j].LastActivityAt)
	})
	return conversations, nil
}

// counterpartFor picks the other member of a direct channel,
// de-duplicating membership rows defensively.
func (s *ConversationService) counterpartFor(ctx context.Context, channelID, userID uint) (uint, bool) {
	members, err := s.membershipRepo.FindByChannelID(ctx, channelID)
	if err != nil {
		s.logger.Warn("could not load members for direct channel", "channel_id", channelID, "error", err)
		return 0, false
	}

	seen := make(map[uint]bool, len(members))
	for _, m := range members {
		if m.UserID == userID || seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		return m.UserID, true
	}
	return 0, false
}
