package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/gantry/pkg/observability"
)

const redisKeyPrefix = "gantry:snapshot:"

// RedisConfig configures a Redis-backed snapshot store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is optional.
	Password string

	// DB selects the logical database.
	DB int

	// TTL bounds snapshot lifetime. Zero means no expiration.
	TTL time.Duration
}

// RedisStore keeps snapshots in Redis, one JSON value per key.
// Suitable for short-lived session engines shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnSave(ctx, "redis", len(snap.Data), time.Since(start), err) }()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(snap.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() {
		size := 0
		if snap != nil {
			size = len(snap.Data)
		}
		observability.Store().OnLoad(ctx, "redis", size, time.Since(start), err)
	}()

	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &out, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*Snapshot, error) {
	var snaps []*Snapshot

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and get
			}
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		snap.Data = nil
		snaps = append(snaps, &snap)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}

	sortByCreatedAt(snaps)
	return snaps, nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnDelete(ctx, "redis", time.Since(start), err) }()

	n, err := s.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
