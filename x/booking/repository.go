//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package booking

import (
	"context"

	"gorm.io/gorm"

	"github.com/hmnpros/gateway/core"
)

type Repository interface {
	Create(ctx context.Context, booking core.Booking) (core.Booking, error)
	Get(ctx context.Context, id string) (core.Booking, error)
	MarkSynced(ctx context.Context, id string, crmContactID string) error
	ListPendingSync(ctx context.Context, limit int) ([]core.Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, booking core.Booking) (core.Booking, error) {
	ctx, span := tracer.Start(ctx, "Booking.Repository.Create")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&booking).Error
	if err != nil {
		span.RecordError(err)
	}
	return booking, err
}

func (r *repository) Get(ctx context.Context, id string) (core.Booking, error) {
	ctx, span := tracer.Start(ctx, "Booking.Repository.Get")
	defer span.End()

	var booking core.Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		span.RecordError(err)
		return core.Booking{}, core.NewErrorNotFound()
	}
	return booking, nil
}

func (r *repository) MarkSynced(ctx context.Context, id string, crmContactID string) error {
	ctx, span := tracer.Start(ctx, "Booking.Repository.MarkSynced")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Booking{}).Where("id = ?", id).Updates(map[string]any{
		"sync_status":    "synced",
		"crm_contact_id": crmContactID,
	}).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) ListPendingSync(ctx context.Context, limit int) ([]core.Booking, error) {
	ctx, span := tracer.Start(ctx, "Booking.Repository.ListPendingSync")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var bookings []core.Booking
	err := r.db.WithContext(ctx).
		Where("sync_status = ?", "pending_sync").
		Order("cdate asc").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		span.RecordError(err)
	}
	return bookings, err
}
