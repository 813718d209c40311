package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"kuzeykoc/pkg/logger"
	"kuzeykoc/services/notification/internal/entity"

	"github.com/redis/go-redis/v9"
)

// Channel names are scoped per coach so every subscription is already
// filtered server-side to a single recipient.
func notificationChannel(coachID string) string {
	return fmt.Sprintf("notifications:%s", coachID)
}

func systemChannel(coachID string) string {
	return fmt.Sprintf("system_notifications:%s", coachID)
}

// Publisher pushes freshly inserted notification rows onto the coach's
// realtime channel.
type Publisher interface {
	PublishNotification(ctx context.Context, n *entity.Notification) error
}

// Subscriber opens a stream of inserted notifications for one coach.
// The returned stop function must be called to release the channel.
type Subscriber interface {
	Subscribe(ctx context.Context, coachID string) (<-chan entity.Notification, func(), error)
}

type RedisChannel struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisChannel(client *redis.Client, log *logger.Logger) *RedisChannel {
	return &RedisChannel{client: client, logger: log}
}

func (r *RedisChannel) PublishNotification(ctx context.Context, n *entity.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := r.client.Publish(ctx, notificationChannel(n.CoachID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (r *RedisChannel) Subscribe(ctx context.Context, coachID string) (<-chan entity.Notification, func(), error) {
	pubsub := r.client.Subscribe(ctx, notificationChannel(coachID))

	// Receive forces the SUBSCRIBE handshake so setup failures surface
	// here instead of as a silently dead channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to open realtime subscription: %w", err)
	}

	out := make(chan entity.Notification)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var n entity.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				r.logger.Warn("Dropping malformed realtime payload: %v", err)
				continue
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { pubsub.Close() }
	return out, stop, nil
}

// SystemNotice is the frame the persistent worker publishes when it
// raises a platform notification with no page open.
type SystemNotice struct {
	Title              string          `json:"title"`
	Body               string          `json:"body"`
	Tag                string          `json:"tag"`
	RequireInteraction bool            `json:"require_interaction"`
	Actions            []string        `json:"actions,omitempty"`
	Route              string          `json:"route,omitempty"`
	Payload            json.RawMessage `json:"payload,omitempty"`
}

func (r *RedisChannel) PublishSystemNotice(ctx context.Context, coachID string, notice SystemNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal system notice: %w", err)
	}
	if err := r.client.Publish(ctx, systemChannel(coachID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish system notice: %w", err)
	}
	return nil
}

// SubscribeSystem streams the worker's platform notifications for a
// coach, for clients that render them alongside the row stream.
func (r *RedisChannel) SubscribeSystem(ctx context.Context, coachID string) (<-chan SystemNotice, func(), error) {
	pubsub := r.client.Subscribe(ctx, systemChannel(coachID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to open system notice subscription: %w", err)
	}

	out := make(chan SystemNotice)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var notice SystemNotice
			if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
				r.logger.Warn("Dropping malformed system notice: %v", err)
				continue
			}
			select {
			case out <- notice:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { pubsub.Close() }
	return out, stop, nil
}
