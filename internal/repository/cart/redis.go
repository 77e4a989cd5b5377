package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the snapshot when no key is configured.
const DefaultRedisKey = "storefront:carts"

type redisSnapshotter struct {
	client *redis.Client
	key    string
}

// NewRedis stores the JSON snapshot under a single key.
func NewRedis(client *redis.Client, key string) Snapshotter {
	if key == "" {
		key = DefaultRedisKey
	}
	return &redisSnapshotter{client: client, key: key}
}

func (r *redisSnapshotter) Name() string { return "redis" }

func (r *redisSnapshotter) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Snapshot{}, nil
		}
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	if snap == nil {
		snap = domain.Snapshot{}
	}
	return snap, nil
}

func (r *redisSnapshotter) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if snapshot == nil {
		snapshot = domain.Snapshot{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *redisSnapshotter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
