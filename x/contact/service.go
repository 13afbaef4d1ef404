// Package contact applies contact and tag events from the CRM to the
// local mirror.
package contact

import (
	"context"
	"log/slog"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/webhook"
)

var tracer = otel.Tracer("contact")

type Service interface {
	HandleCreate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleDelete(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleMerge(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleTagUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleTagCreate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleDndUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleCustomFieldUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleCustomFieldCreate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	HandleFormSubmit(ctx context.Context, event core.NormalizedEvent) core.HandlerResult
	Get(ctx context.Context, id string) (core.Contact, error)
}

type service struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &service{repository: repository}
}

// RegisterHandlers binds this service's handlers into the dispatcher.
func RegisterHandlers(d *webhook.Dispatcher, s Service) {
	d.Register(core.EventContactCreate, s.HandleCreate)
	d.Register(core.EventContactUpdate, s.HandleUpdate)
	d.Register(core.EventContactDelete, s.HandleDelete)
	d.Register(core.EventContactMerge, s.HandleMerge)
	d.Register(core.EventContactTagUpdate, s.HandleTagUpdate)
	d.Register(core.EventTagCreate, s.HandleTagCreate)
	d.Register(core.EventContactDndUpdate, s.HandleDndUpdate)
	d.Register(core.EventContactCustomFieldUpdate, s.HandleCustomFieldUpdate)
	d.Register(core.EventCustomFieldCreate, s.HandleCustomFieldCreate)
	d.Register(core.EventFormSubmit, s.HandleFormSubmit)
}

func (s *service) HandleCreate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleCreate")
	defer span.End()

	return s.upsert(ctx, event, "created")
}

func (s *service) HandleUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleUpdate")
	defer span.End()

	return s.upsert(ctx, event, "updated")
}

func (s *service) upsert(ctx context.Context, event core.NormalizedEvent, action string) core.HandlerResult {
	payload := event.Contact
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "contact payload missing id"}
	}

	contact := core.Contact{
		ID:         payload.ID,
		LocationID: payload.LocationID,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Tags:       pq.StringArray(payload.Tags),
		DndEnabled: payload.DndEnabled,
	}

	if err := s.repository.Upsert(ctx, contact); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: action}
}

func (s *service) HandleDelete(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleDelete")
	defer span.End()

	if event.SubjectID == "" {
		return core.HandlerResult{Success: false, Error: "contact delete missing id"}
	}
	if err := s.repository.Delete(ctx, event.SubjectID); err != nil {
		return core.HandlerResult{Success: false, SubjectID: event.SubjectID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: event.SubjectID, Action: "deleted"}
}

func (s *service) HandleMerge(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleMerge")
	defer span.End()

	payload := event.Contact
	if payload == nil || payload.ID == "" || payload.MergedIntoID == "" {
		return core.HandlerResult{Success: false, Error: "contact merge missing ids"}
	}
	if err := s.repository.Merge(ctx, payload.ID, payload.MergedIntoID); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "merged"}
}

func (s *service) HandleTagUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleTagUpdate")
	defer span.End()

	payload := event.Contact
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "tag update missing contact id"}
	}
	if err := s.repository.SetTags(ctx, payload.ID, payload.Tags); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "tags_updated"}
}

func (s *service) HandleDndUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleDndUpdate")
	defer span.End()

	return s.upsert(ctx, event, "dnd_updated")
}

func (s *service) HandleTagCreate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleTagCreate")
	defer span.End()

	payload := event.Tag
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "tag payload missing id"}
	}

	// Tag definitions are location-level; the mirror only tracks tags on
	// contacts, so a new definition is acknowledged and logged.
	slog.InfoContext(ctx, "crm tag created",
		slog.String("module", "contact"),
		slog.String("tagId", payload.ID),
		slog.String("name", payload.Name),
	)
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "tag_created"}
}

func (s *service) HandleCustomFieldUpdate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleCustomFieldUpdate")
	defer span.End()

	payload := event.CustomField
	if payload == nil || payload.ContactID == "" {
		return core.HandlerResult{Success: false, Error: "custom field update missing contact id"}
	}

	// The mirror carries no custom-field columns; touching the contact
	// invalidates any cached copy so dashboard reads stay coherent.
	if err := s.repository.Touch(ctx, payload.ContactID); err != nil {
		return core.HandlerResult{Success: false, SubjectID: payload.ContactID, Error: err.Error()}
	}
	return core.HandlerResult{Success: true, SubjectID: payload.ContactID, Action: "custom_fields_updated"}
}

func (s *service) HandleCustomFieldCreate(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleCustomFieldCreate")
	defer span.End()

	payload := event.CustomField
	if payload == nil || payload.ID == "" {
		return core.HandlerResult{Success: false, Error: "custom field payload missing id"}
	}

	slog.InfoContext(ctx, "crm custom field created",
		slog.String("module", "contact"),
		slog.String("fieldId", payload.ID),
		slog.String("name", payload.Name),
		slog.String("dataType", payload.DataType),
	)
	return core.HandlerResult{Success: true, SubjectID: payload.ID, Action: "custom_field_created"}
}

func (s *service) HandleFormSubmit(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
	ctx, span := tracer.Start(ctx, "Contact.Service.HandleFormSubmit")
	defer span.End()

	payload := event.Form
	if payload == nil || (payload.ContactID == "" && payload.SubmissionID == "") {
		return core.HandlerResult{Success: false, Error: "form submission missing ids"}
	}

	if payload.ContactID != "" {
		if err := s.repository.Touch(ctx, payload.ContactID); err != nil {
			return core.HandlerResult{Success: false, SubjectID: payload.ContactID, Error: err.Error()}
		}
	}

	slog.InfoContext(ctx, "crm form submission received",
		slog.String("module", "contact"),
		slog.String("formId", payload.FormID),
		slog.String("submissionId", payload.SubmissionID),
		slog.String("contactId", payload.ContactID),
	)
	return core.HandlerResult{Success: true, SubjectID: event.SubjectID, Action: "form_received"}
}

func (s *service) Get(ctx context.Context, id string) (core.Contact, error) {
	ctx, span := tracer.Start(ctx, "Contact.Service.Get")
	defer span.End()

	return s.repository.Get(ctx, id)
}
