package interests

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"waisdom/internal/config"
)

const interestsKey = "waisdom:interests"

// Redis is the durable registry: interests survive restarts. Falls back to
// the configured defaults while the key is unset.
type Redis struct {
	client   *redis.Client
	defaults []string
}

// NewRedis connects to Redis and pings it before returning.
func NewRedis(ctx context.Context, cfg config.RedisConfig, defaults []string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client, defaults: defaults}, nil
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns the stored interest list, or the defaults when unset.
func (r *Redis) Get(ctx context.Context) ([]string, error) {
	raw, err := r.client.Get(ctx, interestsKey).Result()
	if err == redis.Nil {
		out := make([]string, len(r.defaults))
		copy(out, r.defaults)
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read interests: %w", err)
	}

	var interests []string
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("failed to parse interests: %w", err)
	}
	return interests, nil
}

// Set replaces the stored interest list.
func (r *Redis) Set(ctx context.Context, interests []string) error {
	raw, err := json.Marshal(interests)
	if err != nil {
		return fmt.Errorf("failed to marshal interests: %w", err)
	}
	if err := r.client.Set(ctx, interestsKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store interests: %w", err)
	}
	return nil
}

var _ Registry = (*Redis)(nil)
