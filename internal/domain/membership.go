// File: internal/domain/membership.go
package domain

import "time"

// Membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership joins a user to a channel with a role. One row per
// (channel, user) pair.
type Membership struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ChannelID uint      `json:"channel_id" gorm:"not null;uniqueIndex:uk_channel_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:uk_channel_user;index"`
	Role      string    `json:"role" gorm:"not null;default:member"`
	JoinedAt  time.Time `json:"joined_at" gorm:"autoCreateTime"`
}
