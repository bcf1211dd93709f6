package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStorage adapts the Redis client to fiber's session storage
// interface. Session records are owned exclusively by this store.
type SessionStorage struct {
	client *redis.Client
}

// NewSessionStorage wraps the shared Redis client.
func NewSessionStorage(r *Redis) *SessionStorage {
	return &SessionStorage{client: r.Client}
}

// Get returns the raw session record, or nil when absent.
func (s *SessionStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), sessionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores the raw session record with the given expiry.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.client.Set(context.Background(), sessionKeyPrefix+key, val, exp).Err()
}

// Delete removes a session record. Absent keys are not an error.
func (s *SessionStorage) Delete(key string) error {
	return s.client.Del(context.Background(), sessionKeyPrefix+key).Err()
}

// Reset removes all session records.
func (s *SessionStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the underlying client is shared and closed elsewhere.
func (s *SessionStorage) Close() error {
	return nil
}
