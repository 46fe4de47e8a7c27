// File: internal/domain/reaction.go
package domain

import "time"

// Reaction is one user's emoji reaction to one message. A user holds at
// most one reaction per message; a new emoji replaces the old one.
type Reaction struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	MessageID uint      `json:"message_id" gorm:"not null;uniqueIndex:uk_message_user;index"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:uk_message_user"`
	Emoji     string    `json:"emoji" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ReactionRollup aggregates a message's reactions for one emoji.
type ReactionRollup struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
	Users []uint `json:"users"`
}
