package webhook

import (
	"encoding/json"
	"time"

	"github.com/hmnpros/gateway/core"
)

// envelope is the raw vendor payload. The vendor sends subject fields
// either nested under a named object or flattened at the top level,
// depending on event family; both shapes are accepted here.
type envelope struct {
	Event      string    `json:"event"`
	LocationID string    `json:"locationId"`
	Timestamp  time.Time `json:"timestamp"`

	Contact     *core.ContactPayload     `json:"contact"`
	Opportunity *core.OpportunityPayload `json:"opportunity"`
	Appointment *core.AppointmentPayload `json:"appointment"`
	Message     *core.MessagePayload     `json:"message"`
	Task        *core.TaskPayload        `json:"task"`
	Tag         *core.TagPayload         `json:"tag"`
	CustomField *vendorCustomField       `json:"customField"`
	Form        *vendorForm              `json:"form"`
	Submission  *vendorSubmission        `json:"submission"`

	CustomFields map[string]any `json:"customFields"`

	// flattened variants
	ID        string   `json:"id"`
	ContactID string   `json:"contactId"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Tags      []string `json:"tags"`
}

type vendorCustomField struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DataType   string `json:"dataType"`
	LocationID string `json:"locationId"`
}

type vendorForm struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"locationId"`
}

type vendorSubmission struct {
	ID        string         `json:"id"`
	ContactID string         `json:"contactId"`
	Data      map[string]any `json:"data"`
}

// Normalize turns a raw envelope into a NormalizedEvent. The event field
// must be present and not the literal "unknown"; anything else is a
// malformed envelope.
func Normalize(rawBody []byte) (core.NormalizedEvent, error) {
	var env envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return core.NormalizedEvent{}, core.NewErrorMalformedEnvelope("invalid json")
	}

	if env.Event == "" {
		return core.NormalizedEvent{}, core.NewErrorMalformedEnvelope("missing event field")
	}
	if env.Event == "unknown" {
		return core.NormalizedEvent{}, core.NewErrorMalformedEnvelope("event is unknown")
	}

	kind, _ := core.ParseEventKind(env.Event)

	timestamp := env.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	event := core.NormalizedEvent{
		Kind:       kind,
		LocationID: env.LocationID,
		Meta: core.EventMeta{
			Timestamp: timestamp,
			Source:    "gohighlevel",
		},
	}

	switch kind {
	case core.EventContactCreate, core.EventContactUpdate, core.EventContactDelete,
		core.EventContactMerge, core.EventContactTagUpdate, core.EventContactDndUpdate:
		contact := env.Contact
		if contact == nil {
			contact = &core.ContactPayload{
				ID:        env.ID,
				FirstName: env.FirstName,
				LastName:  env.LastName,
				Email:     env.Email,
				Phone:     env.Phone,
				Tags:      env.Tags,
			}
		}
		if contact.LocationID == "" {
			contact.LocationID = env.LocationID
		}
		event.Contact = contact
		event.SubjectID = contact.ID

	case core.EventOpportunityCreate, core.EventOpportunityUpdate, core.EventOpportunityDelete,
		core.EventOpportunityStageUpdate, core.EventOpportunityStatusUpdate, core.EventOpportunityMonetaryValUpdate:
		opportunity := env.Opportunity
		if opportunity == nil {
			var flattened core.OpportunityPayload
			json.Unmarshal(rawBody, &flattened)
			opportunity = &flattened
		}
		if opportunity.LocationID == "" {
			opportunity.LocationID = env.LocationID
		}
		event.Opportunity = opportunity
		event.SubjectID = opportunity.ID

	case core.EventAppointmentCreate, core.EventAppointmentUpdate, core.EventAppointmentDelete,
		core.EventAppointmentStatusUpdate:
		appointment := env.Appointment
		if appointment == nil {
			var flattened core.AppointmentPayload
			json.Unmarshal(rawBody, &flattened)
			appointment = &flattened
		}
		if appointment.LocationID == "" {
			appointment.LocationID = env.LocationID
		}
		event.Appointment = appointment
		event.SubjectID = appointment.ID

	case core.EventInboundMessage, core.EventOutboundMessage:
		message := env.Message
		if message == nil {
			var flattened core.MessagePayload
			json.Unmarshal(rawBody, &flattened)
			message = &flattened
		}
		event.Message = message
		event.SubjectID = message.ContactID

	case core.EventTagCreate:
		tag := env.Tag
		if tag == nil {
			tag = &core.TagPayload{ID: env.ID}
		}
		if tag.LocationID == "" {
			tag.LocationID = env.LocationID
		}
		event.Tag = tag
		event.SubjectID = tag.ID

	case core.EventContactCustomFieldUpdate:
		field := &core.CustomFieldPayload{Values: env.CustomFields}
		if env.Contact != nil {
			field.ContactID = env.Contact.ID
			field.LocationID = env.Contact.LocationID
		}
		if field.ContactID == "" {
			field.ContactID = env.ContactID
		}
		if field.LocationID == "" {
			field.LocationID = env.LocationID
		}
		event.CustomField = field
		event.SubjectID = field.ContactID

	case core.EventCustomFieldCreate:
		field := &core.CustomFieldPayload{LocationID: env.LocationID}
		if env.CustomField != nil {
			field.ID = env.CustomField.ID
			field.Name = env.CustomField.Name
			field.DataType = env.CustomField.DataType
			if env.CustomField.LocationID != "" {
				field.LocationID = env.CustomField.LocationID
			}
		}
		event.CustomField = field
		event.SubjectID = field.ID

	case core.EventFormSubmit:
		form := &core.FormPayload{LocationID: env.LocationID}
		if env.Form != nil {
			form.FormID = env.Form.ID
			form.FormName = env.Form.Name
			if env.Form.LocationID != "" {
				form.LocationID = env.Form.LocationID
			}
		}
		if env.Submission != nil {
			form.SubmissionID = env.Submission.ID
			form.SubmissionData = env.Submission.Data
			form.ContactID = env.Submission.ContactID
		}
		event.Form = form
		event.SubjectID = form.ContactID
		if event.SubjectID == "" {
			event.SubjectID = form.SubmissionID
		}

	case core.EventTaskCreate, core.EventTaskComplete, core.EventNoteCreate:
		task := env.Task
		if task == nil {
			var flattened core.TaskPayload
			json.Unmarshal(rawBody, &flattened)
			task = &flattened
		}
		event.Task = task
		event.SubjectID = task.ID

	default:
		// unrecognized but well-formed events flow to the default handler
		event.SubjectID = env.ID
	}

	return event, nil
}
