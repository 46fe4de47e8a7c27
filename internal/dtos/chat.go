// File: internal/dtos/chat.go
package dtos

import (
	"log"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/markdown"
)

// ChannelCreateRequestDTO represents the payload to create a channel.
type ChannelCreateRequestDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// ChannelResponseDTO defines what fields to expose in channel API responses.
type ChannelResponseDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility"`
	OwnerID     uint   `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

// MemberRequestDTO represents the payload to add a member.
type MemberRequestDTO struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// MembershipResponseDTO is one channel membership row.
type MembershipResponseDTO struct {
	ChannelID uint   `json:"channel_id"`
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
}

// MessageCreateRequestDTO represents the payload to post a message.
type MessageCreateRequestDTO struct {
	Content         string   `json:"content"`
	ParentMessageID *uint    `json:"parent_message_id,omitempty"`
	Attachments     []string `json:"attachments,omitempty"`
}

// MessageEditRequestDTO represents the payload to edit a message.
type MessageEditRequestDTO struct {
	Content string `json:"content"`
}

// MessageResponseDTO defines what fields to expose in message API
// responses. ContentHTML carries the Markdown-rendered body.
type MessageResponseDTO struct {
	ID              uint     `json:"id"`
	ChannelID       uint     `json:"channel_id"`
	AuthorID        uint     `json:"author_id"`
	Content         string   `json:"content"`
	ContentHTML     string   `json:"content_html,omitempty"`
	ParentMessageID *uint    `json:"parent_message_id,omitempty"`
	Attachments     []string `json:"attachments,omitempty"`
	IsPinned        bool     `json:"is_pinned"`
	IsEdited        bool     `json:"is_edited"`
	EditedAt        *string  `json:"edited_at,omitempty"`
	Bookmarked      bool     `json:"bookmarked"`
	ReplyCount      int64    `json:"reply_count,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

// MessageFromDomain maps a domain.Message to MessageResponseDTO. The
// bookmark flag is resolved against the requesting viewer.
func MessageFromDomain(msg domain.Message, viewerID uint) MessageResponseDTO {
	dto := MessageResponseDTO{
		ID:              msg.ID,
		ChannelID:       msg.ChannelID,
		AuthorID:        msg.AuthorID,
		Content:         msg.Content,
		ParentMessageID: msg.ParentMessageID,
		Attachments:     msg.Attachments,
		IsPinned:        msg.IsPinned,
		IsEdited:        msg.IsEdited,
		Bookmarked:      msg.IsBookmarkedBy(viewerID),
		CreatedAt:       msg.CreatedAt.Format(time.RFC3339),
	}
	if msg.EditedAt != nil {
		formatted := msg.EditedAt.Format(time.RFC3339)
		dto.EditedAt = &formatted
	}
	if html, err := markdown.Render(msg.Content); err == nil {
		dto.ContentHTML = html
	} else {
		log.Printf("[DTO] Markdown render failed for message %d: %v", msg.ID, err)
	}
	return dto
}

// MessagesFromDomain maps a slice of messages, resolving bookmarks and
// thread reply counts per viewer. replyCounts may be nil.
func MessagesFromDomain(msgs []domain.Message, viewerID uint, replyCounts map[uint]int64) []MessageResponseDTO {
	dtos := make([]MessageResponseDTO, len(msgs))
	for i, msg := range msgs {
		dtos[i] = MessageFromDomain(msg, viewerID)
		if replyCounts != nil {
			dtos[i].ReplyCount = replyCounts[msg.ID]
		}
	}
	return dtos
}

// ReactionRequestDTO represents the payload to add a reaction.
type ReactionRequestDTO struct {
	Emoji string `json:"emoji"`
}

// ReadMarkerRequestDTO represents the payload to advance a read marker.
type ReadMarkerRequestDTO struct {
	LastMessageID *uint `json:"last_message_id,omitempty"`
}

// UnreadCountsRequestDTO asks for unread counts across channels.
type UnreadCountsRequestDTO struct {
	ChannelIDs []uint `json:"channel_ids"`
}

// RollupsRequestDTO asks for reaction rollups across messages.
type RollupsRequestDTO struct {
	MessageIDs []uint `json:"message_ids"`
}

// DirectChannelRequestDTO asks for the direct channel with another user.
type DirectChannelRequestDTO struct {
	UserID uint `json:"user_id"`
}

// SweepRequestDTO represents the payload for the orphan reconciliation sweep.
type SweepRequestDTO struct {
	GracePeriodMinutes int `json:"grace_period_minutes"`
}
