// Package session keeps server-side login sessions.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"schoolportal/internal/auth"
)

var ErrNoSession = errors.New("no session")

// Store holds identities keyed by session id.
type Store interface {
	Save(ctx context.Context, id string, ident auth.Identity, ttl time.Duration) error
	Load(ctx context.Context, id string) (auth.Identity, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	ident   auth.Identity
	expires time.Time
}

// MemoryStore is an in-process Store. Sessions are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, id string, ident auth.Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{ident: ident, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return auth.Identity{}, ErrNoSession
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return auth.Identity{}, ErrNoSession
	}
	return e.ident, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

const redisKeyPrefix = "portal:session:"

// RedisStore keeps sessions as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, id string, ident auth.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(ident)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (auth.Identity, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.Identity{}, ErrNoSession
	}
	if err != nil {
		return auth.Identity{}, errors.Wrap(err, "load session")
	}
	var ident auth.Identity
	if err := json.Unmarshal(payload, &ident); err != nil {
		return auth.Identity{}, errors.Wrap(err, "decode session")
	}
	return ident, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
