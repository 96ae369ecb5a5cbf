package store

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps one snapshot key per room. A non-zero TTL lets abandoned
// tables expire; every save refreshes it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection before
// returning.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Client exposes the underlying connection for callers that share it, e.g.
// the websocket rate limiter and the readiness probe.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Load(ctx context.Context, room string) ([]byte, error) {
	data, err := s.client.Get(ctx, snapshotKey(room)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot for %q: %w", room, err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, room string, data []byte) error {
	if err := s.client.Set(ctx, snapshotKey(room), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot for %q: %w", room, err)
	}
	return nil
}

func snapshotKey(room string) string {
	return "room:" + room + ":deck"
}
