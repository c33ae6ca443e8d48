// internal/domain/popularity/broadcast.go
package popularity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisBroadcaster carries change signals between API instances over a
// Redis channel. Each instance tags its messages so it can skip its own.
type RedisBroadcaster struct {
	rdb     *redis.Client
	channel string
	origin  string
	log     logrus.FieldLogger
}

// NewRedisBroadcaster creates a broadcaster on channel
func NewRedisBroadcaster(rdb *redis.Client, channel string, log logrus.FieldLogger) *RedisBroadcaster {
	return &RedisBroadcaster{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log,
	}
}

// Publish announces a local change
func (b *RedisBroadcaster) Publish(ctx context.Context) error {
	if err := b.rdb.Publish(ctx, b.channel, b.origin).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", b.channel, err)
	}
	return nil
}

// Listen relays signals from other instances to counter until ctx is done.
// It returns once the subscription is confirmed; relaying runs in the background.
func (b *RedisBroadcaster) Listen(ctx context.Context, counter *Counter) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload == b.origin {
					continue
				}
				b.log.WithField("channel", msg.Channel).Debug("Order counts changed elsewhere")
				counter.Notify()
			}
		}
	}()
	return nil
}
