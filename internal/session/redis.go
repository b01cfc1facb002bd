package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

// NewRedisStore parses a redis:// URL and pings the server.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{Client: client, TTL: ttl, Prefix: "sess:"}, nil
}

func (s *RedisStore) key(id string) string {
	return s.Prefix + Sha256Hex(id)
}

func (s *RedisStore) Create(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	id := newID()
	expires := time.Now().UTC().Add(s.TTL)
	if err := s.Client.Set(ctx, s.key(id), userID.String(), s.TTL).Err(); err != nil {
		return "", time.Time{}, err
	}
	return id, expires, nil
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, ErrNoSession
	}
	val, err := s.Client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNoSession
	}
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrNoSession
	}
	return userID, nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.Client.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
