// Package appointment applies calendar events from the CRM to the local
// appointment mirror.
package appointment

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/webhook"
)

var tracer = otel.Tracer("appointment")

type Service interface {
	HandleUpsert(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleDelete(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	GetUpcoming(ctx context.Context, locationID string, limit int) ([]core.Appointment, error)
}

type service struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &service{repository: repository}
}

func RegisterHandlers(d *webhook.Dispatcher, s Service) {
	d.Register(core.EventAppointmentCreate, s.HandleUpsert)
	d.Register(core.EventAppointmentUpdate, s.HandleUpsert)
	// status changes carry the full appointment record, so the upsert
	// path absorbs them
	d.Register(core.EventAppointmentStatusUpdate, s.HandleUpsert)
	d.Register(core.EventAppointmentDelete, s.HandleDelete)
}

func (s *service) HandleUpsert(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Appointment.Service.HandleUpsert")
	defer span.End()

	payload := event.Appointment
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "appointment payload missing id"}
	}

	appointment := core.Appointment{
		ID:         payload.ID,
		LocationID: payload.LocationID,
		ContactID:  payload.ContactID,
		CalendarID: payload.CalendarID,
		Title:      payload.Title,
		Status:     payload.Status,
		StartTime:  payload.StartTime,
		EndTime:    payload.EndTime,
		Address:    payload.Address,
	}

	if err := s.repository.Upsert(ctx, appointment); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "upserted"}
}

func (s *service) HandleDelete(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Appointment.Service.HandleDelete")
	defer span.End()

	if event.SubjectID == "" {
		return core.HandlerResult{Success: false, Error: "appointment delete missing id"}
	}
	if err := s.repository.Delete(ctx, event.SubjectID); err != nil {
		return core.HandlerResult{Success: false, SubjectID: event.SubjectID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: event.SubjectID, Action: "deleted"}
}

func (s *service) GetUpcoming(ctx context.Context, locationID string, limit int) ([]core.Appointment, error) {
	ctx, span := tracer.Start(ctx, "Appointment.Service.GetUpcoming")
	defer span.End()

	return s.repository.GetUpcoming(ctx, locationID, limit)
}
