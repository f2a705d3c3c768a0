package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"voteledger/pkg/platform/sentinel"
)

// Redis keeps the snapshot under a single key.
type Redis struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Load(ctx context.Context) (Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %v: %w", r.key, err, sentinel.ErrUnavailable)
	}
	return Decode(raw)
}

func (r *Redis) Save(ctx context.Context, snap Snapshot) error {
	raw, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", r.key, err)
	}
	return nil
}
