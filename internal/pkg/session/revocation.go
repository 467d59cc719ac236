package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers access-token ids that were logged out before
// their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const keyPrefix = "revoked_jti:"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore stores revoked ids in redis with the token's remaining lifetime as TTL.
func NewRedisStore(client *redis.Client) RevocationStore {
	return &redisStore{client: client}
}

func (s *redisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keyPrefix+tokenID, "1", ttl).Err()
}

func (s *redisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.client.Get(ctx, keyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore is the single-instance fallback used when REDIS_ADDR is empty.
func NewMemoryStore() RevocationStore {
	return &memoryStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *memoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, id)
		}
	}
	s.entries[tokenID] = now.Add(ttl)
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// Connect pings redis and returns a redis-backed store, or the memory store
// when addr is empty.
func Connect(ctx context.Context, addr, password string, db int) (RevocationStore, func() error, error) {
	if addr == "" {
		return NewMemoryStore(), func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return NewRedisStore(client), client.Close, nil
}
