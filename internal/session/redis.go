package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const sessionKey = "credential-bridge:federated-session"

// RedisConfig holds Redis connection options for the session store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps the active federated session in Redis so multiple bridge
// processes share it
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Put stores the active session record
func (s *RedisStore) Put(ctx context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	return s.client.Set(ctx, sessionKey, data, 0).Err()
}

// Get returns the active session record
func (s *RedisStore) Get(ctx context.Context) (Record, error) {
	data, err := s.client.Get(ctx, sessionKey).Bytes()
	if err == redis.Nil {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read session record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal session record: %w", err)
	}

	return record, nil
}

// Delete removes the active session record
func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, sessionKey).Err()
}
