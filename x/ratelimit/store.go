package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a fixed-window counter with expiry. Increment must be atomic
// with respect to concurrent callers so that limits hold across multiple
// gateway processes when backed by a shared store.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	Peek(ctx context.Context, key string) (count int64, ttl time.Duration, err error)
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates the shared counter store. This is the primary
// backend: INCR + NX expiry keeps counts exact across processes.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb}
}

func (s *redisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	ctx, span := tracer.Start(ctx, "RateLimit.Store.Increment")
	defer span.End()

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, 0, err
	}

	return incr.Val(), ttl.Val(), nil
}

func (s *redisStore) Peek(ctx context.Context, key string) (int64, time.Duration, error) {
	ctx, span := tracer.Start(ctx, "RateLimit.Store.Peek")
	defer span.End()

	count, err := s.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, 0, err
	}
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		span.RecordError(err)
		return 0, 0, err
	}
	return count, ttl, nil
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

type memoryStore struct {
	mutex   sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

// NewMemoryStore creates the in-process fallback store. Counts held here
// are local to one process; multiple instances will each admit their own
// quota. Known limitation, only used when the shared store is down.
func NewMemoryStore() Store {
	return &memoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (s *memoryStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{count: 0, resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

func (s *memoryStore) Peek(ctx context.Context, key string) (int64, time.Duration, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		return 0, 0, nil
	}
	return w.count, w.resetAt.Sub(now), nil
}
