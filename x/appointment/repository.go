//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package appointment

import (
	"context"

	"gorm.io/gorm"

	"github.com/hmnpros/gateway/core"
)

type Repository interface {
	Upsert(ctx context.Context, appointment core.Appointment) error
	Delete(ctx context.Context, id string) error
	GetUpcoming(ctx context.Context, locationID string, limit int) ([]core.Appointment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Upsert(ctx context.Context, appointment core.Appointment) error {
	ctx, span := tracer.Start(ctx, "Appointment.Repository.Upsert")
	defer span.End()

	err := r.db.WithContext(ctx).Save(&appointment).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Appointment.Repository.Delete")
	defer span.End()

	err := r.db.WithContext(ctx).Delete(&core.Appointment{}, "id = ?", id).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) GetUpcoming(ctx context.Context, locationID string, limit int) ([]core.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Appointment.Repository.GetUpcoming")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var appointments []core.Appointment
	query := r.db.WithContext(ctx).
		Where("start_time > clock_timestamp()").
		Order("start_time asc").
		Limit(limit)
	if locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}
	err := query.Find(&appointments).Error
	if err != nil {
		span.RecordError(err)
	}
	return appointments, err
}
