package admin

import (
	"context"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/ratelimit"
	"github.com/hmnpros/gateway/x/webhook"
	mock_webhook "github.com/hmnpros/gateway/x/webhook/mock"
)

type fakeLimiter struct {
	status ratelimit.Status
}

func (f fakeLimiter) Check(ctx context.Context, clientID string, limitType ratelimit.LimitType, endpoint string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: true}, nil
}

func (f fakeLimiter) Status(ctx context.Context) ratelimit.Status {
	return f.status
}

// points at nothing; every cache operation fails fast and the service
// falls through to the repository
func deadCache() *memcache.Client {
	return memcache.New("127.0.0.1:1")
}

func TestRecentDeliveries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_webhook.NewMockRepository(ctrl)
	repo.EXPECT().Recent(gomock.Any(), 10, "ContactCreate", "handled").Return([]core.WebhookDelivery{
		{ID: "d1"},
	}, nil)

	service := NewService(repo, fakeLimiter{}, deadCache())

	deliveries, err := service.RecentDeliveries(context.Background(), 10, "ContactCreate", "handled")
	assert.NoError(t, err)
	assert.Len(t, deliveries, 1)
}

func TestDeliveryStatsFallsThroughOnCacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_webhook.NewMockRepository(ctrl)
	repo.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, since time.Time) (webhook.Stats, error) {
			assert.WithinDuration(t, time.Now().Add(-24*time.Hour), since, time.Minute)
			return webhook.Stats{Total: 42}, nil
		},
	)

	service := NewService(repo, fakeLimiter{}, deadCache())

	stats, err := service.DeliveryStats(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), stats.Total)
}

func TestRateLimitStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(mock_webhook.NewMockRepository(ctrl), fakeLimiter{
		status: ratelimit.Status{Degraded: true},
	}, deadCache())

	status := service.RateLimitStatus(context.Background())
	assert.True(t, status.Degraded)
}

func TestSendTestAlert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_webhook.NewMockRepository(ctrl)
	repo.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, payload string) error {
			assert.Contains(t, payload, "TestAlert")
			return nil
		},
	)

	service := NewService(repo, fakeLimiter{}, deadCache())

	assert.NoError(t, service.SendTestAlert(context.Background()))
}
