// File: internal/domain/message.go
package domain

import "time"

// MaxMessageContentLength is the hard cap on message content.
const MaxMessageContentLength = 5000

// Message is a single message within a channel. A message with a
// ParentMessageID is a thread reply; replies never nest further.
//
// Soft-deleted messages are excluded from listings and aggregates but keep
// their row so reactions and thread links referencing them stay valid.
type Message struct {
	ID              uint       `json:"id" gorm:"primarykey"`
	ChannelID       uint       `json:"channel_id" gorm:"not null;index:idx_channel_created"`
	AuthorID        uint       `json:"author_id" gorm:"not null"`
	Content         string     `json:"content" gorm:"size:5000;not null"`
	ParentMessageID *uint      `json:"parent_message_id,omitempty" gorm:"index"`
	Attachments     []string   `json:"attachments,omitempty" gorm:"serializer:json"`
	IsPinned        bool       `json:"is_pinned"`
	IsEdited        bool       `json:"is_edited"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	IsDeleted       bool       `json:"is_deleted"`
	BookmarkedBy    []uint     `json:"bookmarked_by,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time  `json:"created_at" gorm:"index:idx_channel_created"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (m *Message) IsReply() bool {
	return m.ParentMessageID != nil
}

// IsBookmarkedBy reports whether userID is in the bookmark set.
func (m *Message) IsBookmarkedBy(userID uint) bool {
	for _, id := range m.BookmarkedBy {
		if id == userID {
			return true
		}
	}
	return false
}
