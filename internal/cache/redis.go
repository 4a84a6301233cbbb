package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bharath13925/street-view-videos-sub000/internal/config"
	"github.com/bharath13925/street-view-videos-sub000/internal/logging"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// InitRedis connects to Redis. The cache is optional: when Redis is
// unreachable the helpers below become no-ops and every lookup misses.
func InitRedis(cfg *config.Config) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("[redis] unavailable, caching disabled")
		_ = c.Close()
		return
	}

	client = c
	logging.Info().Str("addr", cfg.RedisAddr).Msg("[redis] connected")
}

// SetClient swaps the package client. Passing nil disables caching.
func SetClient(c *redis.Client) {
	client = c
}

// GetJSON reads key and, when present, decodes it into dest.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value as JSON under key for ttl.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Delete removes keys; missing keys are not an error.
func Delete(ctx context.Context, keys ...string) error {
	if client == nil || len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// Ping checks the connection. A disabled cache is healthy.
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
