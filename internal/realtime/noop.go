// File: internal/realtime/noop.go
package realtime

import "context"

// NoOpBus drops every event. Used in tests and when no Redis address
// is configured.
type NoOpBus struct{}

func (NoOpBus) Publish(ctx context.Context, event Event) error { return nil }

func (NoOpBus) StartForwarder(ctx context.Context, onEvent func(Event)) error { return nil }

func (NoOpBus) Close() error { return nil }
