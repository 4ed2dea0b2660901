package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "eventdesk:session:"

// RedisStore keeps sessions as JSON strings with a sliding TTL, so several
// desk processes can serve the same session.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient connects to url, falling back to treating it as a bare
// address when it is not a redis:// URL, and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func key(id string) string { return keyPrefix + id }

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, key(s.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session %s: %w", s.ID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return decode(data)
}

// Save writes s only if its key still exists (SET XX).
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	err = r.rdb.SetArgs(ctx, key(s.ID), data, redis.SetArgs{Mode: "XX", TTL: r.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
