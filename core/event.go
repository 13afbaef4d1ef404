package core

import (
	"time"
)

// EventKind enumerates the webhook event types the gateway understands.
// Raw vendor event names are parsed into this enum once, at the normalizer
// boundary; everything downstream dispatches on the enum, not on strings.
type EventKind string

const (
	EventContactCreate EventKind = "ContactCreate"
	EventContactUpdate EventKind = "ContactUpdate"
	EventContactDelete EventKind = "ContactDelete"
	EventContactMerge  EventKind = "ContactMerge"

	EventContactTagUpdate EventKind = "ContactTagUpdate"
	EventTagCreate        EventKind = "TagCreate"

	EventOpportunityCreate            EventKind = "OpportunityCreate"
	EventOpportunityUpdate            EventKind = "OpportunityUpdate"
	EventOpportunityDelete            EventKind = "OpportunityDelete"
	EventOpportunityStageUpdate       EventKind = "OpportunityStageUpdate"
	EventOpportunityStatusUpdate      EventKind = "OpportunityStatusUpdate"
	EventOpportunityMonetaryValUpdate EventKind = "OpportunityMonetaryValueUpdate"

	EventAppointmentCreate       EventKind = "AppointmentCreate"
	EventAppointmentUpdate       EventKind = "AppointmentUpdate"
	EventAppointmentDelete       EventKind = "AppointmentDelete"
	EventAppointmentStatusUpdate EventKind = "AppointmentStatusUpdate"

	EventContactCustomFieldUpdate EventKind = "ContactCustomFieldUpdate"
	EventCustomFieldCreate        EventKind = "CustomFieldCreate"
	EventFormSubmit               EventKind = "FormSubmit"

	EventContactDndUpdate EventKind = "ContactDndUpdate"
	EventNoteCreate       EventKind = "NoteCreate"
	EventTaskCreate       EventKind = "TaskCreate"
	EventTaskComplete     EventKind = "TaskComplete"
	EventInboundMessage   EventKind = "InboundMessage"
	EventOutboundMessage  EventKind = "OutboundMessage"
)

var knownEventKinds = map[string]EventKind{
	string(EventContactCreate):                EventContactCreate,
	string(EventContactUpdate):                EventContactUpdate,
	string(EventContactDelete):                EventContactDelete,
	string(EventContactMerge):                 EventContactMerge,
	string(EventContactTagUpdate):             EventContactTagUpdate,
	string(EventTagCreate):                    EventTagCreate,
	string(EventOpportunityCreate):            EventOpportunityCreate,
	string(EventOpportunityUpdate):            EventOpportunityUpdate,
	string(EventOpportunityDelete):            EventOpportunityDelete,
	string(EventOpportunityStageUpdate):       EventOpportunityStageUpdate,
	string(EventOpportunityStatusUpdate):      EventOpportunityStatusUpdate,
	string(EventOpportunityMonetaryValUpdate): EventOpportunityMonetaryValUpdate,
	string(EventAppointmentCreate):            EventAppointmentCreate,
	string(EventAppointmentUpdate):            EventAppointmentUpdate,
	string(EventAppointmentDelete):            EventAppointmentDelete,
	string(EventAppointmentStatusUpdate):      EventAppointmentStatusUpdate,
	string(EventContactCustomFieldUpdate):     EventContactCustomFieldUpdate,
	string(EventCustomFieldCreate):            EventCustomFieldCreate,
	string(EventFormSubmit):                   EventFormSubmit,
	string(EventContactDndUpdate):             EventContactDndUpdate,
	string(EventNoteCreate):                   EventNoteCreate,
	string(EventTaskCreate):                   EventTaskCreate,
	string(EventTaskComplete):                 EventTaskComplete,
	string(EventInboundMessage):               EventInboundMessage,
	string(EventOutboundMessage):              EventOutboundMessage,
}

// ParseEventKind maps a raw vendor event name to an EventKind.
// Unrecognized names are returned as-is with ok=false so the dispatcher
// can route them to its default handler.
func ParseEventKind(raw string) (EventKind, bool) {
	kind, ok := knownEventKinds[raw]
	if !ok {
		return EventKind(raw), false
	}
	return kind, true
}

type EventMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

type ContactPayload struct {
	ID           string   `json:"id"`
	LocationID   string   `json:"locationId"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Tags         []string `json:"tags"`
	DndEnabled   bool     `json:"dnd"`
	MergedIntoID string   `json:"mergedIntoId,omitempty"`
}

type OpportunityPayload struct {
	ID            string `json:"id"`
	LocationID    string `json:"locationId"`
	ContactID     string `json:"contactId"`
	Name          string `json:"name"`
	PipelineID    string `json:"pipelineId"`
	StageID       string `json:"pipelineStageId"`
	Status        string `json:"status"`
	MonetaryValue int64  `json:"monetaryValue"`
}

type AppointmentPayload struct {
	ID         string    `json:"id"`
	LocationID string    `json:"locationId"`
	ContactID  string    `json:"contactId"`
	CalendarID string    `json:"calendarId"`
	Title      string    `json:"title"`
	Status     string    `json:"appointmentStatus"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Address    string    `json:"address"`
}

type MessagePayload struct {
	ID             string `json:"id"`
	ContactID      string `json:"contactId"`
	Type           string `json:"messageType"`
	Body           string `json:"body"`
	Direction      string `json:"direction"`
	ConversationID string `json:"conversationId"`
}

type TagPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"locationId"`
}

// CustomFieldPayload carries either a contact's updated field values
// (ContactCustomFieldUpdate) or a new field definition (CustomFieldCreate).
type CustomFieldPayload struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name,omitempty"`
	DataType   string         `json:"dataType,omitempty"`
	LocationID string         `json:"locationId"`
	ContactID  string         `json:"contactId,omitempty"`
	Values     map[string]any `json:"values,omitempty"`
}

type FormPayload struct {
	FormID         string         `json:"formId"`
	FormName       string         `json:"formName"`
	LocationID     string         `json:"locationId"`
	SubmissionID   string         `json:"submissionId"`
	SubmissionData map[string]any `json:"submissionData,omitempty"`
	ContactID      string         `json:"contactId"`
}

type TaskPayload struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DueDate   time.Time `json:"dueDate"`
	Completed bool      `json:"completed"`
}

// NormalizedEvent is the internal record produced from a raw webhook
// envelope. Exactly one of the payload pointers is set, matching Kind.
type NormalizedEvent struct {
	Kind       EventKind `json:"kind"`
	SubjectID  string    `json:"subjectId"`
	LocationID string    `json:"locationId"`

	Contact     *ContactPayload     `json:"contact,omitempty"`
	Opportunity *OpportunityPayload `json:"opportunity,omitempty"`
	Appointment *AppointmentPayload `json:"appointment,omitempty"`
	Message     *MessagePayload     `json:"message,omitempty"`
	Task        *TaskPayload        `json:"task,omitempty"`
	Tag         *TagPayload         `json:"tag,omitempty"`
	CustomField *CustomFieldPayload `json:"customField,omitempty"`
	Form        *FormPayload        `json:"form,omitempty"`

	Meta EventMeta `json:"meta"`
}

// HandlerResult is what a domain handler returns to the dispatcher.
// Handlers never propagate errors past the dispatcher boundary;
// failures are folded into this struct and logged.
type HandlerResult struct {
	Success   bool   `json:"success"`
	SubjectID string `json:"subjectId,omitempty"`
	Action    string `json:"action,omitempty"`
	Error     string `json:"error,omitempty"`
}
