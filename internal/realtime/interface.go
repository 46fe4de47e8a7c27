// File: internal/realtime/interface.go
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names published on the bus.
const (
	EventChannelCreated  = "channel.created"
	EventChannelDeleted  = "channel.deleted"
	EventMemberAdded     = "member.added"
	EventMemberRemoved   = "member.removed"
	EventMessageCreated  = "message.created"
	EventMessageEdited   = "message.edited"
	EventMessageDeleted  = "message.deleted"
	EventMessagePinned   = "message.pinned"
	EventReactionUpdated = "reaction.updated"
	EventReactionRemoved = "reaction.removed"
	EventChannelRead     = "channel.read"
)

// Event is a single fan-out notification. Delivery is best effort:
// producers must never fail an operation because an event could not
// be published.
type Event struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	ChannelID uint                   `json:"channel_id"`
	ActorID   uint                   `json:"actor_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	EmittedAt time.Time              `json:"emitted_at"`
}

// NewEvent stamps an event with a fresh ID and emission time.
func NewEvent(name string, channelID, actorID uint, payload map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		ChannelID: channelID,
		ActorID:   actorID,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
}

// Bus fans events out to interested subscribers.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	// StartForwarder subscribes and invokes onEvent for every event until
	// ctx is cancelled.
	StartForwarder(ctx context.Context, onEvent func(Event)) error
	Close() error
}
