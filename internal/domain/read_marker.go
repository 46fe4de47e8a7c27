// File: internal/domain/read_marker.go
package domain

import "time"

// ReadMarker records the last point a user has read in a channel. One row
// per (user, channel); LastReadAt never moves backwards.
type ReadMarker struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:uk_user_channel"`
	ChannelID     uint      `json:"channel_id" gorm:"not null;uniqueIndex:uk_user_channel"`
	LastReadAt    time.Time `json:"last_read_at" gorm:"not null"`
	LastMessageID *uint     `json:"last_message_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
