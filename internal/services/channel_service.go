// File: internal/services/channel_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/repository/channel"
	"github.com/huddlehq/huddle/internal/repository/membership"
	"github.com/huddlehq/huddle/internal/repository/user"
	"github.com/huddlehq/huddle/internal/services/core"
)

// ChannelService owns the channel directory and the membership registry.
// Role-based permission decisions belong to the calling layer; this
// service exposes IsMember/IsAdmin as the primitives those decisions are
// built from.
type ChannelService struct {
	channelRepo    channel.ChannelRepository
	membershipRepo membership.MembershipRepository
	userRepo       user.UserRepository
	bus            realtime.Bus
	logger         Logger
}

func NewChannelService(
	channelRepo channel.ChannelRepository,
	membershipRepo membership.MembershipRepository,
	userRepo user.UserRepository,
	bus realtime.Bus,
	logger Logger,
) (*ChannelService, error) {
	if channelRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "channel repository is required")
	}
	if membershipRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "membership repository is required")
	}
	if userRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "user repository is required")
	}
	if bus == nil {
		bus = realtime.NoOpBus{}
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChannelService{
		channelRepo:    channelRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		bus:            bus,
		logger:         logger,
	}, nil
}

// Create makes a public or private channel and registers the owner as
// its admin member in the same transaction. Direct channels go through
// GetOrCreateDirectChannel instead.
func (s *ChannelService) Create(ctx context.Context, ownerID uint, name, description, visibility string) (*domain.Channel, error) {
	const op = "create_channel"

	if ownerID == 0 {
		return nil, core.NewInvalidArgumentError(op, "owner ID is required")
	}
	if visibility != domain.ChannelPublic && visibility != domain.ChannelPrivate {
		return nil, core.NewInvalidArgumentError(op, "visibility must be public or private")
	}

	normalized := domain.NormalizeChannelName(name)
	if !domain.ValidChannelName(normalized) {
		return nil, core.NewInvalidArgumentError(op, "channel name is malformed")
	}
	if domain.IsDirectChannelName(normalized) {
		return nil, core.NewInvalidArgumentError(op, "the dm-- name prefix is reserved for direct channels")
	}

	ch := &domain.Channel{
		Name:        normalized,
		Description: strings.TrimSpace(description),
		Visibility:  visibility,
		OwnerID:     ownerID,
	}
	created, err := s.channelRepo.CreateWithOwner(ctx, ch)
	if err != nil {
		if errors.Is(err, channel.ErrDuplicateName) {
			return nil, core.NewConflictError(op, "an active channel with this name already exists")
		}
		return nil, core.NewUnavailableError(op, "could not create channel", err)
	}

	s.logger.Info("channel created", "channel_id", created.ID, "name", created.Name, "owner_id", ownerID)
	s.emit(ctx, realtime.NewEvent(realtime.EventChannelCreated, created.ID, ownerID, map[string]interface{}{
		"name":       created.Name,
		"visibility": created.Visibility,
	}))
	return created, nil
}

// GetOrCreateDirectChannel returns the one direct channel for the pair,
// creating it on first use. The name is derived from the sorted pair of
// user IDs, so both call orders and concurrent callers converge on the
// same channel; the unique-name race is resolved by catching the
// conflict and re-reading.
func (s *ChannelService) GetOrCreateDirectChannel(ctx context.Context, userA, userB uint) (*domain.Channel, error) {
	const op = "get_or_create_direct_channel"

	if userA == 0 || userB == 0 {
		return nil, core.NewInvalidArgumentError(op, "both user IDs are required")
	}
	if userA == userB {
		return nil, core.NewInvalidArgumentError(op, "a direct channel needs two distinct users")
	}
	for _, id := range []uint{userA, userB} {
		if _, err := s.userRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return nil, core.NewNotFoundError(op, "user not found")
			}
			return nil, core.NewUnavailableError(op, "could not resolve user", err)
		}
	}

	name := domain.DirectChannelName(userA, userB)
	existing, err := s.channelRepo.FindActiveDirectByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, channel.ErrChannelNotFound) {
		return nil, core.NewUnavailableError(op, "could not look up direct channel", err)
	}

	lo, hi := userA, userB
	if hi < lo {
		lo, hi = hi, lo
	}
	created, err := s.channelRepo.CreateWithOwner(ctx, &domain.Channel{
		Name:       name,
		Visibility: domain.ChannelDirect,
		OwnerID:    lo,
	})
	if err != nil {
		if errors.Is(err, channel.ErrDuplicateName) {
			// Lost the creation race; the winner's channel is the answer.
			winner, readErr := s.channelRepo.FindActiveDirectByName(ctx, name)
			if readErr != nil {
				return nil, core.NewUnavailableError(op, "could not re-read direct channel after conflict", readErr)
			}
			return winner, nil
		}
		return nil, core.NewUnavailableError(op, "could not create direct channel", err)
	}

	if _, err := s.membershipRepo.Add(ctx, created.ID, hi, domain.RoleMember); err != nil {
		return nil, core.NewUnavailableError(op, "could not add second direct member", err)
	}

	s.logger.Info("direct channel created", "channel_id", created.ID, "name", name)
	s.emit(ctx, realtime.NewEvent(realtime.EventChannelCreated, created.ID, userA, map[string]interface{}{
		"name":       created.Name,
		"visibility": created.Visibility,
	}))
	return created, nil
}

// AddMember is idempotent: adding an existing member returns false, not
// an error.
func (s *ChannelService) AddMember(ctx context.Context, channelID, userID uint, role string) (bool, error) {
	const op = "add_member"

	if role != domain.RoleAdmin && role != domain.RoleMember {
		return false, core.NewInvalidArgumentError(op, "role must be admin or member")
	}
	if _, err := s.activeChannel(ctx, op, channelID); err != nil {
		return false, err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return false, core.NewNotFoundError(op, "user not found")
		}
		return false, core.NewUnavailableError(op, "could not resolve user", err)
	}

	added, err := s.membershipRepo.Add(ctx, channelID, userID, role)
	if err != nil {
		return false, core.NewUnavailableError(op, "could not add member", err)
	}
	if added {
		s.emit(ctx, realtime.NewEvent(realtime.EventMemberAdded, channelID, userID, map[string]interface{}{
			"user_id": userID,
			"role":    role,
		}))
	}
	return added, nil
}

func (s *ChannelService) RemoveMember(ctx context.Context, channelID, userID uint) (bool, error) {
	const op = "remove_member"

	removed, err := s.membershipRepo.Remove(ctx, channelID, userID)
	if err != nil {
		return false, core.NewUnavailableError(op, "could not remove member", err)
	}
	if removed {
		s.emit(ctx, realtime.NewEvent(realtime.EventMemberRemoved, channelID, userID, map[string]interface{}{
			"user_id": userID,
		}))
	}
	return removed, nil
}

// IsMember is a pure capability check used by the calling layer as an
// authorization gate.
func (s *ChannelService) IsMember(ctx context.Context, channelID, userID uint) (bool, error) {
	ok, err := s.membershipRepo.IsMember(ctx, channelID, userID)
	if err != nil {
		return false, core.NewUnavailableError("is_member", "could not check membership", err)
	}
	return ok, nil
}

func (s *ChannelService) IsAdmin(ctx context.Context, channelID, userID uint) (bool, error) {
	ok, err := s.membershipRepo.IsAdmin(ctx, channelID, userID)
	if err != nil {
		return false, core.NewUnavailableError("is_admin", "could not check admin role", err)
	}
	return ok, nil
}

func (s *ChannelService) Get(ctx context.Context, channelID uint) (*domain.Channel, error) {
	return s.activeChannel(ctx, "get_channel", channelID)
}

func (s *ChannelService) ListMembers(ctx context.Context, channelID uint) ([]domain.Membership, error) {
	const op = "list_members"

	if _, err := s.activeChannel(ctx, op, channelID); err != nil {
		return nil, err
	}
	members, err := s.membershipRepo.FindByChannelID(ctx, channelID)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not list members", err)
	}
	return members, nil
}

func (s *ChannelService) ListForUser(ctx context.Context, userID uint) ([]domain.Channel, error) {
	channels, err := s.channelRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, core.NewUnavailableError("list_for_user", "could not list channels", err)
	}
	return channels, nil
}

func (s *ChannelService) ListPublic(ctx context.Context, limit int) ([]domain.Channel, error) {
	channels, err := s.channelRepo.ListPublic(ctx, limit)
	if err != nil {
		return nil, core.NewUnavailableError("list_public", "could not list public channels", err)
	}
	return channels, nil
}

// SoftDelete retires the channel; its name becomes reusable immediately.
func (s *ChannelService) SoftDelete(ctx context.Context, channelID, actorID uint) error {
	const op = "delete_channel"

	if _, err := s.activeChannel(ctx, op, channelID); err != nil {
		return err
	}
	if err := s.channelRepo.SoftDelete(ctx, channelID); err != nil {
		if errors.Is(err, channel.ErrChannelNotFound) {
			return core.NewNotFoundError(op, "channel not found")
		}
		return core.NewUnavailableError(op, "could not delete channel", err)
	}

	s.logger.Info("channel deleted", "channel_id", channelID, "actor_id", actorID)
	s.emit(ctx, realtime.NewEvent(realtime.EventChannelDeleted, channelID, actorID, nil))
	return nil
}

func (s *ChannelService) activeChannel(ctx context.Context, op string, channelID uint) (*domain.Channel, error) {
	ch, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, channel.ErrChannelNotFound) {
			return nil, core.NewNotFoundError(op, "channel not found")
		}
		return nil, core.NewUnavailableError(op, "could not load channel", err)
	}
	if ch.IsDeleted() {
		return nil, core.NewNotFoundError(op, "channel not found")
	}
	return ch, nil
}

// emit publishes best effort: persistence already succeeded, a delivery
// failure is logged and never surfaced.
func (s *ChannelService) emit(ctx context.Context, event realtime.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event", event.Name, "channel_id", event.ChannelID, "error", err)
	}
}
