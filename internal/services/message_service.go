// File: internal/services/message_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/repository/channel"
	"github.com/huddlehq/huddle/internal/repository/message"
	"github.com/huddlehq/huddle/internal/repository/threadlink"
	"github.com/huddlehq/huddle/internal/services/core"
)

// MessageService owns the message store: creation, threading, edits,
// soft-deletes, bookmarks, pins and the substring search.
type MessageService struct {
	messageRepo    message.MessageRepository
	channelRepo    channel.ChannelRepository
	threadLinkRepo threadlink.ThreadLinkRepository
	bus            realtime.Bus
	logger         Logger
}

func NewMessageService(
	messageRepo message.MessageRepository,
	channelRepo channel.ChannelRepository,
	threadLinkRepo threadlink.ThreadLinkRepository,
	bus realtime.Bus,
	logger Logger,
) (*MessageService, error) {
	if messageRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "message repository is required")
	}
	if channelRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "channel repository is required")
	}
	if threadLinkRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "thread link repository is required")
	}
	if bus == nil {
		bus = realtime.NoOpBus{}
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &MessageService{
		messageRepo:    messageRepo,
		channelRepo:    channelRepo,
		threadLinkRepo: threadLinkRepo,
		bus:            bus,
		logger:         logger,
	}, nil
}

// Create posts a message, or a one-level-deep reply when parentMessageID
// is set. The reply and its thread link are written as one unit.
func (s *MessageService) Create(ctx context.Context, channelID, authorID uint, content string, parentMessageID *uint, attachments []string) (*domain.Message, error) {
	const op = "create_message"

	if authorID == 0 {
		return nil, core.NewInvalidArgumentError(op, "author ID is required")
	}
	if err := validateContent(op, content); err != nil {
		return nil, err
	}
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

	msg := &domain.Message{
		ChannelID:       channelID,
		AuthorID:        authorID,
		Content:         content,
		ParentMessageID: parentMessageID,
		Attachments:     attachments,
	}

	var created *domain.Message
	if parentMessageID != nil && *parentMessageID != 0 {
		parent, err := s.messageRepo.FindByID(ctx, *parentMessageID)
		if err != nil {
			if errors.Is(err, message.ErrMessageNotFound) {
				return nil, core.NewNotFoundError(op, "parent message not found")
			}
			return nil, core.NewUnavailableError(op, "could not load parent message", err)
		}
		if parent.IsDeleted {
			return nil, core.NewNotFoundError(op, "parent message not found")
		}
		if parent.IsReply() {
			// Threads stay one level deep.
			return nil, core.NewNotFoundError(op, "parent message is itself a reply")
		}
		if parent.ChannelID != channelID {
			return nil, core.NewInvalidArgumentError(op, "parent message belongs to a different channel")
		}

		created, err = s.messageRepo.CreateReply(ctx, msg)
		if err != nil {
			return nil, core.NewUnavailableError(op, "could not create reply", err)
		}
	} else {
		msg.ParentMessageID = nil
		created, err = s.messageRepo.Create(ctx, msg)
		if err != nil {
			return nil, core.NewUnavailableError(op, "could not create message", err)
		}
	}

	// Bump the channel's activity timestamp so ListForUser keeps its
	// most-recently-active ordering. The message is already persisted;
	// a failed bump is logged, not surfaced.
	if err := s.channelRepo.TouchUpdatedAt(ctx, channelID); err != nil {
		s.logger.Warn("could not bump channel activity", "channel_id", channelID, "error", err)
	}

	s.emit(ctx, realtime.NewEvent(realtime.EventMessageCreated, channelID, authorID, map[string]interface{}{
		"message_id": created.ID,
		"parent_id":  created.ParentMessageID,
	}))
	return created, nil
}

// Edit rewrites the content. Only the author may edit.
func (s *MessageService) Edit(ctx context.Context, messageID, actorID uint, newContent string) (*domain.Message, error) {
	const op = "edit_message"

	if err := validateContent(op, newContent); err != nil {
		return nil, err
	}
	msg, err := s.visibleMessage(ctx, op, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != actorID {
		return nil, core.NewUnauthorizedError(op, "only the author can edit a message")
	}

	now := time.Now().UTC()
	msg.Content = newContent
	msg.IsEdited = true
	msg.EditedAt = &now
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, core.NewUnavailableError(op, "could not save edited message", err)
	}

	s.emit(ctx, realtime.NewEvent(realtime.EventMessageEdited, msg.ChannelID, actorID, map[string]interface{}{
		"message_id": msg.ID,
	}))
	return msg, nil
}

// SoftDelete marks the message deleted. Only the author may delete;
// reactions and thread links stay behind for the reconciliation sweep.
func (s *MessageService) SoftDelete(ctx context.Context, messageID, actorID uint) (bool, error) {
	const op = "delete_message"

	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return false, core.NewNotFoundError(op, "message not found")
		}
		return false, core.NewUnavailableError(op, "could not load message", err)
	}
	if msg.AuthorID != actorID {
		return false, core.NewUnauthorizedError(op, "only the author can delete a message")
	}
	if msg.IsDeleted {
		return false, nil
	}

	if err := s.messageRepo.SoftDelete(ctx, messageID); err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			// Another caller deleted it between the read and the write.
			return false, nil
		}
		return false, core.NewUnavailableError(op, "could not delete message", err)
	}

	s.emit(ctx, realtime.NewEvent(realtime.EventMessageDeleted, msg.ChannelID, actorID, map[string]interface{}{
		"message_id": msg.ID,
	}))
	return true, nil
}

// ListChannelMessages pages top-level, non-deleted messages newest
// first. beforeID == 0 starts from the newest.
func (s *MessageService) ListChannelMessages(ctx context.Context, channelID uint, limit int, beforeID uint) ([]domain.Message, error) {
	const op = "list_channel_messages"

	messages, err := s.messageRepo.ListTopLevel(ctx, channelID, limit, beforeID)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not list channel messages", err)
	}
	return messages, nil
}

// GetThreadReplies returns the parent's replies oldest first.
func (s *MessageService) GetThreadReplies(ctx context.Context, parentID uint) ([]domain.Message, error) {
	const op = "get_thread_replies"

	if _, err := s.visibleMessage(ctx, op, parentID); err != nil {
		return nil, err
	}
	replies, err := s.messageRepo.FindThreadReplies(ctx, parentID)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not load thread replies", err)
	}
	return replies, nil
}

// ThreadReplyCounts returns reply counts for a page of parents in one
// query, for list rendering.
func (s *MessageService) ThreadReplyCounts(ctx context.Context, parentIDs []uint) (map[uint]int64, error) {
	counts, err := s.threadLinkRepo.CountByParents(ctx, parentIDs)
	if err != nil {
		return nil, core.NewUnavailableError("thread_reply_counts", "could not count thread replies", err)
	}
	return counts, nil
}

// ToggleBookmark flips the caller's bookmark and returns the new state.
// Repeated calls are not errors.
func (s *MessageService) ToggleBookmark(ctx context.Context, messageID, userID uint) (bool, error) {
	const op = "toggle_bookmark"

	bookmarked, err := s.messageRepo.ToggleBookmark(ctx, messageID, userID)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return false, core.NewNotFoundError(op, "message not found")
		}
		return false, core.NewUnavailableError(op, "could not toggle bookmark", err)
	}
	return bookmarked, nil
}

// SetPinned pins or unpins a message. Role gating (channel admin) is
// the caller's responsibility via IsAdmin.
func (s *MessageService) SetPinned(ctx context.Context, messageID, actorID uint, pinned bool) (bool, error) {
	const op = "set_pinned"

	msg, err := s.visibleMessage(ctx, op, messageID)
	if err != nil {
		return false, err
	}
	if msg.IsPinned == pinned {
		return false, nil
	}

	if err := s.messageRepo.SetPinned(ctx, messageID, pinned); err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return false, core.NewNotFoundError(op, "message not found")
		}
		return false, core.NewUnavailableError(op, "could not update pin state", err)
	}

	s.emit(ctx, realtime.NewEvent(realtime.EventMessagePinned, msg.ChannelID, actorID, map[string]interface{}{
		"message_id": msg.ID,
		"pinned":     pinned,
	}))
	return true, nil
}

// Search is a case-insensitive substring filter within one channel.
func (s *MessageService) Search(ctx context.Context, channelID uint, term string, limit int) ([]domain.Message, error) {
	const op = "search_messages"

	if strings.TrimSpace(term) == "" {
		return nil, core.NewInvalidArgumentError(op, "search term cannot be empty")
	}
	messages, err := s.messageRepo.Search(ctx, channelID, term, limit)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not search messages", err)
	}
	return messages, nil
}

func (s *MessageService) Get(ctx context.Context, messageID uint) (*domain.Message, error) {
	return s.visibleMessage(ctx, "get_message", messageID)
}

func (s *MessageService) visibleMessage(ctx context.Context, op string, messageID uint) (*domain.Message, error) {
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

func (s *MessageService) emit(ctx context.Context, event realtime.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event", event.Name, "channel_id", event.ChannelID, "error", err)
	}
}

func validateContent(op, content string) error {
	if strings.TrimSpace(content) == "" {
		return core.NewInvalidArgumentError(op, "message content cannot be empty")
	}
	// The limit counts characters, not bytes; multibyte content gets
	// the full allowance.
	if utf8.RuneCountInString(content) > domain.MaxMessageContentLength {
		return core.NewInvalidArgumentError(op, "message content exceeds the maximum length")
	}
	return nil
}
