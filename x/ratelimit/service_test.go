package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hmnpros/gateway/x/util"
)

type brokenStore struct{}

func (s *brokenStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("connection refused")
}

func (s *brokenStore) Peek(ctx context.Context, key string) (int64, time.Duration, error) {
	return 0, 0, errors.New("connection refused")
}

func TestCheckAdmitsUpToLimitThenDenies(t *testing.T) {
	ctx := context.Background()

	conf := util.RateLimit{
		Types: map[string]util.LimitConfig{
			"booking_create": {WindowMs: 900000, MaxRequests: 5},
		},
	}
	s := NewService(NewMemoryStore(), NewMemoryStore(), conf)

	for i := 0; i < 5; i++ {
		decision, err := s.Check(ctx, "client-1", LimitBookingCreate, "/api/bookings")
		assert.NoError(t, err)
		assert.True(t, decision.Allowed, "call %d should be admitted", i+1)
		assert.Equal(t, 4-i, decision.Remaining)
		assert.Equal(t, 5, decision.Limit)
	}

	decision, err := s.Check(ctx, "client-1", LimitBookingCreate, "/api/bookings")
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), decision.ResetTime, 5*time.Second)

	// repeated denied calls keep advancing the stored counter past the
	// limit; the decision must stay denied with Remaining pinned at zero
	for i := 0; i < 3; i++ {
		decision, err = s.Check(ctx, "client-1", LimitBookingCreate, "/api/bookings")
		assert.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 0, decision.Remaining)
	}
}

func TestCheckIsolatesClients(t *testing.T) {
	ctx := context.Background()

	conf := util.RateLimit{
		Types: map[string]util.LimitConfig{
			"booking_create": {WindowMs: 900000, MaxRequests: 1},
		},
	}
	s := NewService(NewMemoryStore(), NewMemoryStore(), conf)

	first, err := s.Check(ctx, "client-a", LimitBookingCreate, "")
	assert.NoError(t, err)
	assert.True(t, first.Allowed)

	second, err := s.Check(ctx, "client-a", LimitBookingCreate, "")
	assert.NoError(t, err)
	assert.False(t, second.Allowed)

	other, err := s.Check(ctx, "client-b", LimitBookingCreate, "")
	assert.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestCheckWindowReset(t *testing.T) {
	ctx := context.Background()

	now := time.Now()
	store := &memoryStore{
		windows: make(map[string]*memoryWindow),
		now:     func() time.Time { return now },
	}

	conf := util.RateLimit{
		Types: map[string]util.LimitConfig{
			"auth_login": {WindowMs: 1000, MaxRequests: 2},
		},
	}
	s := NewService(store, NewMemoryStore(), conf)

	for i := 0; i < 3; i++ {
		s.Check(ctx, "client-1", LimitAuthLogin, "")
	}
	decision, err := s.Check(ctx, "client-1", LimitAuthLogin, "")
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)

	// jump past the window boundary; counter must be fresh
	now = now.Add(1500 * time.Millisecond)

	decision, err = s.Check(ctx, "client-1", LimitAuthLogin, "")
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestCheckFallsBackWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()

	conf := util.RateLimit{
		Types: map[string]util.LimitConfig{
			"api_general": {WindowMs: 60000, MaxRequests: 2},
		},
	}
	s := NewService(&brokenStore{}, NewMemoryStore(), conf)

	first, err := s.Check(ctx, "client-1", LimitAPIGeneral, "")
	assert.NoError(t, err)
	assert.True(t, first.Allowed)

	assert.True(t, s.Status(ctx).Degraded)

	// fallback still enforces the quota within this process
	s.Check(ctx, "client-1", LimitAPIGeneral, "")
	third, err := s.Check(ctx, "client-1", LimitAPIGeneral, "")
	assert.NoError(t, err)
	assert.False(t, third.Allowed)
}

func TestCheckDisabled(t *testing.T) {
	ctx := context.Background()

	conf := util.RateLimit{
		Disabled: true,
		Types: map[string]util.LimitConfig{
			"public": {WindowMs: 1000, MaxRequests: 1},
		},
	}
	s := NewService(NewMemoryStore(), NewMemoryStore(), conf)

	for i := 0; i < 10; i++ {
		decision, err := s.Check(ctx, "client-1", LimitPublic, "")
		assert.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
}
