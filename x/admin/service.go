// Package admin exposes the operations dashboard: delivery history,
// limiter status, cache control, and the live event feed.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/ratelimit"
	"github.com/hmnpros/gateway/x/webhook"
)

var tracer = otel.Tracer("admin")

const statsCacheTTL = 60 // seconds

type Service interface {
	RecentDeliveries(ctx context.Context, limit int, kind string, outcome string) ([]core.WebhookDelivery, error)
	DeliveryStats(ctx context.Context, hours int) (webhook.Stats, error)
	RateLimitStatus(ctx context.Context) ratelimit.Status
	ClearCache(ctx context.Context) error
	SendTestAlert(ctx context.Context) error
}

type service struct {
	deliveries webhook.Repository
	limiter    ratelimit.Service
	mc         *memcache.Client
}

func NewService(deliveries webhook.Repository, limiter ratelimit.Service, mc *memcache.Client) Service {
	return &service{
		deliveries: deliveries,
		limiter:    limiter,
		mc:         mc,
	}
}

func (s *service) RecentDeliveries(ctx context.Context, limit int, kind string, outcome string) ([]core.WebhookDelivery, error) {
	ctx, span := tracer.Start(ctx, "Admin.Service.RecentDeliveries")
	defer span.End()

	return s.deliveries.Recent(ctx, limit, kind, outcome)
}

func (s *service) DeliveryStats(ctx context.Context, hours int) (webhook.Stats, error) {
	ctx, span := tracer.Start(ctx, "Admin.Service.DeliveryStats")
	defer span.End()

	if hours <= 0 || hours > 24*30 {
		hours = 24
	}

	cacheKey := "admin:webhook_stats:" + strconv.Itoa(hours)
	if item, err := s.mc.Get(cacheKey); err == nil {
		var cached webhook.Stats
		if err := json.Unmarshal(item.Value, &cached); err == nil {
			return cached, nil
		}
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	stats, err := s.deliveries.Stats(ctx, since)
	if err != nil {
		span.RecordError(err)
		return webhook.Stats{}, err
	}

	if encoded, err := json.Marshal(stats); err == nil {
		err = s.mc.Set(&memcache.Item{Key: cacheKey, Value: encoded, Expiration: statsCacheTTL})
		if err != nil {
			slog.Error("failed to cache delivery stats", slog.String("error", err.Error()))
		}
	}

	return stats, nil
}

func (s *service) RateLimitStatus(ctx context.Context) ratelimit.Status {
	ctx, span := tracer.Start(ctx, "Admin.Service.RateLimitStatus")
	defer span.End()

	return s.limiter.Status(ctx)
}

func (s *service) ClearCache(ctx context.Context) error {
	_, span := tracer.Start(ctx, "Admin.Service.ClearCache")
	defer span.End()

	err := s.mc.DeleteAll()
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *service) SendTestAlert(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Admin.Service.SendTestAlert")
	defer span.End()

	payload, _ := json.Marshal(map[string]any{
		"kind":      "TestAlert",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	err := s.deliveries.PublishEvent(ctx, string(payload))
	if err != nil {
		span.RecordError(err)
	}
	return err
}
