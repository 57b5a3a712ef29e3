package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/repair-desk/internal/domain"
)

type redisSnapshotRepository struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotRepository stores the desk as one JSON document under key.
func NewRedisSnapshotRepository(client *redis.Client, key string) SnapshotRepository {
	return &redisSnapshotRepository{client: client, key: key}
}

func (r *redisSnapshotRepository) Load(ctx context.Context) (domain.DeskSnapshot, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DeskSnapshot{}, false, nil
	}
	if err != nil {
		return domain.DeskSnapshot{}, false, err
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return domain.DeskSnapshot{}, false, err
	}
	return snap, true, nil
}

func (r *redisSnapshotRepository) Save(ctx context.Context, snap domain.DeskSnapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}
