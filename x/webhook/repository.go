//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package webhook

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hmnpros/gateway/core"
)

// EventChannel is the redis pubsub channel the admin live feed consumes.
const EventChannel = "hmnp:events"

type Stats struct {
	Total     int64            `json:"total"`
	ByOutcome map[string]int64 `json:"byOutcome"`
	ByKind    map[string]int64 `json:"byKind"`
}

// Repository persists the delivery log and publishes feed events.
type Repository interface {
	Log(ctx context.Context, delivery core.WebhookDelivery) error
	Recent(ctx context.Context, limit int, kind string, outcome string) ([]core.WebhookDelivery, error)
	Stats(ctx context.Context, since time.Time) (Stats, error)
	PublishEvent(ctx context.Context, payload string) error
}

type repository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewRepository(db *gorm.DB, rdb *redis.Client) Repository {
	return &repository{db, rdb}
}

func (r *repository) Log(ctx context.Context, delivery core.WebhookDelivery) error {
	ctx, span := tracer.Start(ctx, "Webhook.Repository.Log")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&delivery).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) Recent(ctx context.Context, limit int, kind string, outcome string) ([]core.WebhookDelivery, error) {
	ctx, span := tracer.Start(ctx, "Webhook.Repository.Recent")
	defer span.End()

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Order("c_date DESC").Limit(limit)
	if kind != "" {
		query = query.Where("event_kind = ?", kind)
	}
	if outcome != "" {
		query = query.Where("outcome = ?", outcome)
	}

	var deliveries []core.WebhookDelivery
	if err := query.Find(&deliveries).Error; err != nil {
		span.RecordError(err)
		return nil, err
	}
	return deliveries, nil
}

func (r *repository) Stats(ctx context.Context, since time.Time) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Webhook.Repository.Stats")
	defer span.End()

	stats := Stats{
		ByOutcome: map[string]int64{},
		ByKind:    map[string]int64{},
	}

	type row struct {
		Key   string
		Count int64
	}

	var outcomes []row
	err := r.db.WithContext(ctx).Model(&core.WebhookDelivery{}).
		Select("outcome as key, count(*) as count").
		Where("c_date > ?", since).
		Group("outcome").
		Scan(&outcomes).Error
	if err != nil {
		span.RecordError(err)
		return stats, err
	}
	for _, o := range outcomes {
		stats.ByOutcome[o.Key] = o.Count
		stats.Total += o.Count
	}

	var kinds []row
	err = r.db.WithContext(ctx).Model(&core.WebhookDelivery{}).
		Select("event_kind as key, count(*) as count").
		Where("c_date > ?", since).
		Group("event_kind").
		Scan(&kinds).Error
	if err != nil {
		span.RecordError(err)
		return stats, err
	}
	for _, k := range kinds {
		stats.ByKind[k.Key] = k.Count
	}

	return stats, nil
}

func (r *repository) PublishEvent(ctx context.Context, payload string) error {
	ctx, span := tracer.Start(ctx, "Webhook.Repository.PublishEvent")
	defer span.End()

	err := r.rdb.Publish(ctx, EventChannel, payload).Err()
	if err != nil {
		span.RecordError(err)
	}
	return err
}
