// internal/service/pipeline/cache.go
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salescrm-service/internal/domain/pipeline"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StageCache holds each tenant's ordered stage list.
type StageCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) ([]pipeline.Stage, bool, error)
	Set(ctx context.Context, tenantID uuid.UUID, stages []pipeline.Stage) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

type RedisStageCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStageCache(client redis.Cmdable, ttl time.Duration) *RedisStageCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStageCache{client: client, ttl: ttl}
}

func stagesKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("pipeline_stages:%s", tenantID)
}

func (c *RedisStageCache) Get(ctx context.Context, tenantID uuid.UUID) ([]pipeline.Stage, bool, error) {
	data, err := c.client.Get(ctx, stagesKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stages []pipeline.Stage
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached stages: %w", err)
	}
	return stages, true, nil
}

func (c *RedisStageCache) Set(ctx context.Context, tenantID uuid.UUID, stages []pipeline.Stage) error {
	data, err := json.Marshal(stages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, stagesKey(tenantID), data, c.ttl).Err()
}

func (c *RedisStageCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, stagesKey(tenantID)).Err()
}
