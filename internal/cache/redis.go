package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	snapshotMetaHash = "graph:snapshot:meta"
	snapshotTTL      = 24 * time.Hour
)

func snapshotKey(key string) string {
	return "graph:snapshot:" + key
}

var _ GraphCache = (*RedisGraphCache)(nil)

type RedisGraphCache struct {
	client *redis.Client
}

// NewRedisGraphCache connects to the redis instance at addr.
func NewRedisGraphCache(addr string) *RedisGraphCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})

	return &RedisGraphCache{client: client}
}

// SetSnapshot stores the payload and its metadata atomically. The
// payload expires on its own when no snapshot task refreshes it.
func (r *RedisGraphCache) SetSnapshot(ctx context.Context, snap *Snapshot) error {
	meta, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Set(ctx, snapshotKey(snap.Key), snap.Data, snapshotTTL).Err(); err != nil {
			return err
		}
		if err := p.HSet(ctx, snapshotMetaHash, snap.Key, meta).Err(); err != nil {
			return err
		}

		return nil
	})

	return err
}

func (r *RedisGraphCache) GetSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	res := r.client.Get(ctx, snapshotKey(key))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	data, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Key: key}
	meta := r.client.HGet(ctx, snapshotMetaHash, key)
	if meta.Err() == nil {
		if err := json.Unmarshal([]byte(meta.Val()), snap); err != nil {
			// the payload is still usable without its metadata
			logrus.Warnf("snapshot %s has corrupted metadata: %v", key, err)
		}
	}
	snap.Data = data

	return snap, nil
}

func (r *RedisGraphCache) DeleteSnapshot(ctx context.Context, key string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Del(ctx, snapshotKey(key)).Err(); err != nil {
			return err
		}
		if err := p.HDel(ctx, snapshotMetaHash, key).Err(); err != nil {
			return err
		}

		return nil
	})

	return err
}
