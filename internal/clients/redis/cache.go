package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/utils"
)

// Cache keeps the latest priority snapshot per child so reads skip the
// max-computed_at query. Optional: NewCache returns nil, nil when REDIS_ADDR
// is unset and callers fall back to the database.
type Cache struct {
	client *goredis.Client
	log    *logger.Logger
	ttl    time.Duration
}

func NewCache(log *logger.Logger) (*Cache, error) {
	cacheLog := log.With("client", "RedisCache")
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		cacheLog.Info("REDIS_ADDR not set, priority snapshot cache disabled")
		return nil, nil
	}
	password := utils.GetEnv("REDIS_PASSWORD", "", log)
	ttlSeconds := utils.GetEnvAsInt("REDIS_SNAPSHOT_TTL_SECONDS", 3600, log)

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{
		client: client,
		log:    cacheLog,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func snapshotKey(childID uuid.UUID) string {
	return "priority_snapshot:" + childID.String()
}

func (c *Cache) SetPrioritySnapshot(ctx context.Context, childID uuid.UUID, snapshot any) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(childID), payload, c.ttl).Err()
}

// GetPrioritySnapshot fills dest and reports whether a snapshot existed.
func (c *Cache) GetPrioritySnapshot(ctx context.Context, childID uuid.UUID, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	payload, err := c.client.Get(ctx, snapshotKey(childID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return true, nil
}

// DeletePrioritySnapshot drops the cached snapshot so readers fall back to
// the database.
func (c *Cache) DeletePrioritySnapshot(ctx context.Context, childID uuid.UUID) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotKey(childID)).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
