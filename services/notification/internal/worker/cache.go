package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	coachKey       = "worker:coach"
	credentialsKey = "worker:credentials"
)

func lastCheckKey(coachID string) string {
	return fmt.Sprintf("worker:last_check:%s", coachID)
}

// DurableCache is the worker state that must survive worker restarts.
// Missing entries return nil values, not errors.
type DurableCache interface {
	SetCoach(ctx context.Context, coach CoachData) error
	GetCoach(ctx context.Context) (*CoachData, error)
	SetCredentials(ctx context.Context, creds Credentials) error
	GetCredentials(ctx context.Context) (*Credentials, error)
	SetLastCheck(ctx context.Context, coachID string, t time.Time) error
	GetLastCheck(ctx context.Context, coachID string) (time.Time, error)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) SetCoach(ctx context.Context, coach CoachData) error {
	data, err := json.Marshal(coach)
	if err != nil {
		return fmt.Errorf("marshal coach: %w", err)
	}
	return c.client.Set(ctx, coachKey, data, 0).Err()
}

func (c *RedisCache) GetCoach(ctx context.Context) (*CoachData, error) {
	data, err := c.client.Get(ctx, coachKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var coach CoachData
	if err := json.Unmarshal(data, &coach); err != nil {
		return nil, fmt.Errorf("unmarshal coach: %w", err)
	}
	return &coach, nil
}

func (c *RedisCache) SetCredentials(ctx context.Context, creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	return c.client.Set(ctx, credentialsKey, data, 0).Err()
}

func (c *RedisCache) GetCredentials(ctx context.Context) (*Credentials, error) {
	data, err := c.client.Get(ctx, credentialsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return &creds, nil
}

func (c *RedisCache) SetLastCheck(ctx context.Context, coachID string, t time.Time) error {
	return c.client.Set(ctx, lastCheckKey(coachID), t.UnixMilli(), 0).Err()
}

// GetLastCheck returns the Unix epoch when no check has happened yet,
// so the first cycle treats every unread notification as new.
func (c *RedisCache) GetLastCheck(ctx context.Context, coachID string) (time.Time, error) {
	millis, err := c.client.Get(ctx, lastCheckKey(coachID)).Int64()
	if err == redis.Nil {
		return time.Unix(0, 0), nil
	}
	if err != nil {
		return time.Unix(0, 0), err
	}
	return time.UnixMilli(millis), nil
}
