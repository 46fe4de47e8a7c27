// File: internal/domain/thread_link.go
package domain

import "time"

// ThreadLink indexes a reply under its parent message. Threads are kept
// flat: one row per reply, written in the same transaction as the reply,
// and parents are always top-level messages.
type ThreadLink struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ParentID  uint      `json:"parent_id" gorm:"not null;uniqueIndex:uk_parent_reply;index"`
	ReplyID   uint      `json:"reply_id" gorm:"not null;uniqueIndex:uk_parent_reply"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
