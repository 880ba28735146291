package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"irokart-be/internal/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const ChannelPrefix = "irokart:changes:"

func channelFor(table string) string {
	return ChannelPrefix + table
}

// RedisBus shares change events between server instances over Redis
// pub/sub, one channel per table.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(ctx context.Context, redisURL string) (*RedisBus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisBus{client: client}, nil
}

func newRedisBusWithClient(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelFor(ev.Table), payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, tables ...string) (<-chan Event, error) {
	var ps *redis.PubSub
	if len(tables) == 0 {
		ps = b.client.PSubscribe(ctx, ChannelPrefix+"*")
	} else {
		channels := make([]string, 0, len(tables))
		for _, t := range tables {
			channels = append(channels, channelFor(t))
		}
		ps = b.client.Subscribe(ctx, channels...)
	}

	// Receive blocks until the subscription is confirmed, so connection
	// problems surface here rather than as a silent empty stream.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan Event, defaultSubscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := decodeMessage(msg.Channel, msg.Payload)
				if err != nil {
					logger.L().Warn("dropping malformed change event",
						zap.String("channel", msg.Channel),
						zap.Error(err),
					)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

func decodeMessage(channel, payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Table == "" {
		ev.Table = strings.TrimPrefix(channel, ChannelPrefix)
	}
	if ev.Table == "" {
		return Event{}, fmt.Errorf("event without table on %q", channel)
	}
	return ev, nil
}
