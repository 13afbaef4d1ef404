// Package opportunity applies pipeline events from the CRM to the local
// opportunity mirror.
package opportunity

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/webhook"
)

var tracer = otel.Tracer("opportunity")

type Service interface {
	HandleUpsert(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleDelete(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleStageUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleStatusUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleMonetaryValueUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
}

type service struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &service{repository: repository}
}

func RegisterHandlers(d *webhook.Dispatcher, s Service) {
	d.Register(core.EventOpportunityCreate, s.HandleUpsert)
	d.Register(core.EventOpportunityUpdate, s.HandleUpsert)
	d.Register(core.EventOpportunityDelete, s.HandleDelete)
	d.Register(core.EventOpportunityStageUpdate, s.HandleStageUpdate)
	d.Register(core.EventOpportunityStatusUpdate, s.HandleStatusUpdate)
	d.Register(core.EventOpportunityMonetaryValUpdate, s.HandleMonetaryValueUpdate)
}

func (s *service) HandleUpsert(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Opportunity.Service.HandleUpsert")
	defer span.End()

	payload := event.Opportunity
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "opportunity payload missing id"}
	}

	opportunity := core.Opportunity{
		ID:            payload.ID,
		LocationID:    payload.LocationID,
		ContactID:     payload.ContactID,
		Name:          payload.Name,
		PipelineID:    payload.PipelineID,
		StageID:       payload.StageID,
		Status:        payload.Status,
		MonetaryValue: payload.MonetaryValue,
	}

	if err := s.repository.Upsert(ctx, opportunity); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "upserted"}
}

func (s *service) HandleDelete(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Opportunity.Service.HandleDelete")
	defer span.End()

	if event.SubjectID == "" {
		return core.HandlerResult{Success: false, Error: "opportunity delete missing id"}
	}
	if err := s.repository.Delete(ctx, event.SubjectID); err != nil {
		return core.HandlerResult{Success: false, SubjectID: event.SubjectID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: event.SubjectID, Action: "deleted"}
}

func (s *service) HandleStageUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Opportunity.Service.HandleStageUpdate")
	defer span.End()

	payload := event.Opportunity
	if payload == nil || payload.ID == "" || payload.StageID == "" {
		return core.HandlerResult{Success: false, Error: "stage update missing ids"}
	}
	if err := s.repository.UpdateStage(ctx, payload.ID, payload.StageID); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "stage_updated"}
}

func (s *service) HandleStatusUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Opportunity.Service.HandleStatusUpdate")
	defer span.End()

	payload := event.Opportunity
	if payload == nil || payload.ID == "" || payload.Status == "" {
		return core.HandlerResult{Success: false, Error: "status update missing fields"}
	}
	if err := s.repository.UpdateStatus(ctx, payload.ID, payload.Status); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "status_updated"}
}

func (s *service) HandleMonetaryValueUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Opportunity.Service.HandleMonetaryValueUpdate")
	defer span.End()

	payload := event.Opportunity
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "monetary value update missing id"}
	}
	if err := s.repository.UpdateMonetaryValue(ctx, payload.ID, payload.MonetaryValue); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "value_updated"}
}
