package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"messaging/internal/models"
)

const keyPrefix = "profile:"

// ProfileCache holds user profiles keyed by user id.
type ProfileCache interface {
	// Profiles returns the cached profiles among ids and the ids that missed.
	Profiles(ctx context.Context, ids []int64) (map[int64]models.Profile, []int64, error)
	Store(ctx context.Context, profiles []models.Profile) error
}

type RedisCache struct {
	Client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration, log *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{Client: client, ttl: ttl, log: log}, nil
}

func (c *RedisCache) Profiles(ctx context.Context, ids []int64) (map[int64]models.Profile, []int64, error) {
	found := make(map[int64]models.Profile, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	values, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, ids, fmt.Errorf("failed to read profiles: %w", err)
	}

	var missing []int64
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p models.Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			c.log.Warn("Dropping unreadable cached profile", "key", keys[i], "error", err)
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = p
	}
	return found, missing, nil
}

func (c *RedisCache) Store(ctx context.Context, profiles []models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	_, err := c.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range profiles {
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key(p.ID), data, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store profiles: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// Nop is used when no Redis address is configured. Every lookup misses.
type Nop struct{}

func (Nop) Profiles(_ context.Context, ids []int64) (map[int64]models.Profile, []int64, error) {
	return map[int64]models.Profile{}, ids, nil
}

func (Nop) Store(context.Context, []models.Profile) error { return nil }

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}
