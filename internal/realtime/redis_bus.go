// File: internal/realtime/redis_bus.go
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type redisBus struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to Redis and verifies the connection before
// returning. channel defaults to "huddle.events" when empty.
func NewRedisBus(addr, channel string) (Bus, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "huddle.events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.New("redis ping failed: " + err.Error())
	}

	log.Printf("[RealtimeBus] Connected to Redis at %s (channel %q)", addr, channel)
	return &redisBus{rdb: rdb, channel: channel}, nil
}

func (b *redisBus) Publish(ctx context.Context, event Event) error {
	if b == nil || b.rdb == nil {
		return errors.New("realtime bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if b == nil || b.rdb == nil {
		return errors.New("realtime bus not initialized")
	}
	if onEvent == nil {
		return errors.New("onEvent callback is required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return errors.New("redis subscribe failed: " + err.Error())
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					log.Printf("[RealtimeBus] Dropping malformed event payload: %v", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
