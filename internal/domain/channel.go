// File: internal/domain/channel.go
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Channel visibility values.
const (
	ChannelPublic  = "public"
	ChannelPrivate = "private"
	ChannelDirect  = "direct"
)

// Channel is a named conversation container: public, private, or direct.
//
// Name uniqueness holds only among active (non-deleted) channels; a deleted
// channel's name may be reused. The constraint is enforced by a partial
// unique index created at migration time (see cmd/server).
type Channel struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	Name        string     `json:"name" gorm:"not null;index"`
	Description string     `json:"description"`
	Visibility  string     `json:"visibility" gorm:"not null;default:public"`
	OwnerID     uint       `json:"owner_id" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (c *Channel) IsDeleted() bool {
	return c.DeletedAt != nil
}

var channelNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,79}$`)

// directChannelNamePrefix marks the reserved namespace for derived
// direct-channel names. Ordinary channels may not use it.
const directChannelNamePrefix = "dm--"

// IsDirectChannelName reports whether a normalized name falls in the
// reserved direct-channel namespace.
func IsDirectChannelName(name string) bool {
	return strings.HasPrefix(name, directChannelNamePrefix)
}

// NormalizeChannelName lowercases a channel name and replaces whitespace
// runs with single hyphens.
func NormalizeChannelName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "-")
}

// ValidChannelName reports whether a normalized name is acceptable.
func ValidChannelName(name string) bool {
	return channelNamePattern.MatchString(name)
}

// DirectChannelName derives the deterministic name of the direct channel
// between two users. Both argument orders produce the same name, so two
// independent get-or-create calls converge on one channel.
func DirectChannelName(userA, userB uint) string {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("%s%d--%d", directChannelNamePrefix, lo, hi)
}
