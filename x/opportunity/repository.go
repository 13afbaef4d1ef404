//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package opportunity

import (
	"context"

	"gorm.io/gorm"

	"github.com/hmnpros/gateway/core"
)

type Repository interface {
	Upsert(ctx context.Context, opportunity core.Opportunity) error
	Delete(ctx context.Context, id string) error
	UpdateStage(ctx context.Context, id string, stageID string) error
	UpdateStatus(ctx context.Context, id string, status string) error
	UpdateMonetaryValue(ctx context.Context, id string, value int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Upsert(ctx context.Context, opportunity core.Opportunity) error {
	ctx, span := tracer.Start(ctx, "Opportunity.Repository.Upsert")
	defer span.End()

	err := r.db.WithContext(ctx).Save(&opportunity).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Opportunity.Repository.Delete")
	defer span.End()

	err := r.db.WithContext(ctx).Delete(&core.Opportunity{}, "id = ?", id).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) UpdateStage(ctx context.Context, id string, stageID string) error {
	ctx, span := tracer.Start(ctx, "Opportunity.Repository.UpdateStage")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Opportunity{}).Where("id = ?", id).Update("stage_id", stageID).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, span := tracer.Start(ctx, "Opportunity.Repository.UpdateStatus")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Opportunity{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) UpdateMonetaryValue(ctx context.Context, id string, value int64) error {
	ctx, span := tracer.Start(ctx, "Opportunity.Repository.UpdateMonetaryValue")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Opportunity{}).Where("id = ?", id).Update("monetary_value", value).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}
