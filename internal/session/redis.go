package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "session:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// ConnectRedis opens a client and checks it with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Create(ctx context.Context, data *Data) (string, error) {
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now().UTC()
	}

	id := newID()
	if err := s.write(ctx, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}

	if err := s.client.Expire(ctx, keyPrefix+id, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("session refresh: %w", err)
	}
	return &data, nil
}

// Save only overwrites a live session; it never brings back one that was
// deleted or has expired.
func (s *RedisStore) Save(ctx context.Context, id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	ok, err := s.client.SetXX(ctx, keyPrefix+id, raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}
