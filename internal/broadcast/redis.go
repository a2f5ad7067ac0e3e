// Package broadcast carries ChangeEvents between connected clients over
// board-scoped Redis Pub/Sub topics. Delivery is at-least-once from the
// subscriber's point of view and unordered across clients; nothing is
// persisted. The occupancy store stays the system of record, so a missed
// event only degrades freshness until the next full re-fetch.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"boardroom/internal/domain"
)

// RedisChannel implements domain.Broadcaster and domain.BroadcastSubscriber
// on top of Redis Pub/Sub. It is safe for concurrent use.
type RedisChannel struct {
	rdb *redis.Client
}

func NewRedisChannel(opts *redis.Options) *RedisChannel {
	return &RedisChannel{rdb: redis.NewClient(opts)}
}

// Close closes the Redis connection. Implements io.Closer.
func (c *RedisChannel) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *RedisChannel) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// BoardTopic returns the Pub/Sub channel name for a board.
func BoardTopic(boardID string) string {
	return "boardroom:board:" + boardID + ":events"
}

// Publish sends a ChangeEvent to every subscriber of the board's topic.
func (c *RedisChannel) Publish(ctx context.Context, boardID string, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := c.rdb.Publish(ctx, BoardTopic(boardID), payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

type subscription struct {
	events <-chan domain.ChangeEvent
	errs   <-chan error
	cancel func()
	once   sync.Once
}

func (s *subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

func (s *subscription) Errors() <-chan error {
	return s.errs
}

// Close stops the subscription and cleans up resources. Safe to call multiple times.
func (s *subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe opens a subscription to the board's topic. Events are delivered on
// a buffered channel (size 16); a slow subscriber may miss events, which the
// periodic full re-fetch backstop tolerates. Callers must Close the
// subscription when done; cancelling ctx also stops it.
func (c *RedisChannel) Subscribe(ctx context.Context, boardID string) (domain.BroadcastSubscription, error) {
	pubsub := c.rdb.Subscribe(ctx, BoardTopic(boardID))
	// Wait for the subscribe confirmation so events published right after
	// this call returns are not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to board topic: %w", err)
	}

	eventsChan := make(chan domain.ChangeEvent, 16)
	errorsChan := make(chan error, 16)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev domain.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("unmarshal change event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}
				select {
				case eventsChan <- ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &subscription{
		events: eventsChan,
		errs:   errorsChan,
		cancel: cancelFunc,
	}, nil
}
