package webhook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hmnpros/gateway/core"
)

func TestNormalizeContactCreate(t *testing.T) {
	body := []byte(`{"event":"ContactCreate","locationId":"loc1","contact":{"id":"abc123","email":"x@y.com","firstName":"Ada"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventContactCreate, event.Kind)
	assert.Equal(t, "abc123", event.SubjectID)
	assert.Equal(t, "loc1", event.LocationID)
	if assert.NotNil(t, event.Contact) {
		assert.Equal(t, "abc123", event.Contact.ID)
		assert.Equal(t, "x@y.com", event.Contact.Email)
		assert.Equal(t, "loc1", event.Contact.LocationID)
	}
	assert.Equal(t, "gohighlevel", event.Meta.Source)
	assert.False(t, event.Meta.Timestamp.IsZero())
}

func TestNormalizeFlattenedContact(t *testing.T) {
	body := []byte(`{"event":"ContactUpdate","locationId":"loc1","id":"abc123","email":"x@y.com","tags":["notary","vip"]}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, "abc123", event.SubjectID)
	if assert.NotNil(t, event.Contact) {
		assert.Equal(t, []string{"notary", "vip"}, event.Contact.Tags)
	}
}

func TestNormalizeOpportunityStage(t *testing.T) {
	body := []byte(`{"event":"OpportunityStageUpdate","locationId":"loc1","opportunity":{"id":"opp1","contactId":"abc123","pipelineStageId":"stage-2","monetaryValue":12500}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventOpportunityStageUpdate, event.Kind)
	assert.Equal(t, "opp1", event.SubjectID)
	if assert.NotNil(t, event.Opportunity) {
		assert.Equal(t, "stage-2", event.Opportunity.StageID)
		assert.Equal(t, int64(12500), event.Opportunity.MonetaryValue)
	}
}

func TestNormalizeAppointment(t *testing.T) {
	body := []byte(`{"event":"AppointmentCreate","appointment":{"id":"apt1","contactId":"abc123","appointmentStatus":"confirmed","address":"123 Main St, Houston TX"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventAppointmentCreate, event.Kind)
	assert.Equal(t, "apt1", event.SubjectID)
	if assert.NotNil(t, event.Appointment) {
		assert.Equal(t, "confirmed", event.Appointment.Status)
	}
}

func TestNormalizeAppointmentStatusUpdate(t *testing.T) {
	body := []byte(`{"event":"AppointmentStatusUpdate","appointment":{"id":"apt1","contactId":"abc123","appointmentStatus":"cancelled"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventAppointmentStatusUpdate, event.Kind)
	assert.Equal(t, "apt1", event.SubjectID)
	if assert.NotNil(t, event.Appointment) {
		assert.Equal(t, "cancelled", event.Appointment.Status)
	}
}

func TestNormalizeTagCreate(t *testing.T) {
	body := []byte(`{"event":"TagCreate","tag":{"id":"tag1","name":"vip","locationId":"loc1"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventTagCreate, event.Kind)
	assert.Equal(t, "tag1", event.SubjectID)
	if assert.NotNil(t, event.Tag) {
		assert.Equal(t, "vip", event.Tag.Name)
		assert.Equal(t, "loc1", event.Tag.LocationID)
	}
}

func TestNormalizeContactCustomFieldUpdate(t *testing.T) {
	body := []byte(`{"event":"ContactCustomFieldUpdate","contact":{"id":"abc123","locationId":"loc1"},"customFields":{"preferred_location":"downtown"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventContactCustomFieldUpdate, event.Kind)
	assert.Equal(t, "abc123", event.SubjectID)
	if assert.NotNil(t, event.CustomField) {
		assert.Equal(t, "abc123", event.CustomField.ContactID)
		assert.Equal(t, "loc1", event.CustomField.LocationID)
		assert.Equal(t, "downtown", event.CustomField.Values["preferred_location"])
	}
}

func TestNormalizeCustomFieldCreate(t *testing.T) {
	body := []byte(`{"event":"CustomFieldCreate","customField":{"id":"field1","name":"Preferred Location","dataType":"TEXT","locationId":"loc1"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventCustomFieldCreate, event.Kind)
	assert.Equal(t, "field1", event.SubjectID)
	if assert.NotNil(t, event.CustomField) {
		assert.Equal(t, "TEXT", event.CustomField.DataType)
	}
}

func TestNormalizeFormSubmit(t *testing.T) {
	body := []byte(`{"event":"FormSubmit","form":{"id":"form1","name":"Booking Inquiry","locationId":"loc1"},"submission":{"id":"sub1","contactId":"abc123","data":{"service":"mobile-notary"}}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, core.EventFormSubmit, event.Kind)
	assert.Equal(t, "abc123", event.SubjectID)
	if assert.NotNil(t, event.Form) {
		assert.Equal(t, "form1", event.Form.FormID)
		assert.Equal(t, "sub1", event.Form.SubmissionID)
		assert.Equal(t, "mobile-notary", event.Form.SubmissionData["service"])
	}
}

func TestNormalizeFormSubmitWithoutContact(t *testing.T) {
	body := []byte(`{"event":"FormSubmit","submission":{"id":"sub1"}}`)

	event, err := Normalize(body)
	assert.NoError(t, err)
	assert.Equal(t, "sub1", event.SubjectID)
}

func TestNormalizeMissingEvent(t *testing.T) {
	_, err := Normalize([]byte(`{"contact":{"id":"abc123"}}`))

	var malformed core.ErrorMalformedEnvelope
	assert.True(t, errors.As(err, &malformed))
}

func TestNormalizeUnknownLiteral(t *testing.T) {
	_, err := Normalize([]byte(`{"event":"unknown"}`))

	var malformed core.ErrorMalformedEnvelope
	assert.True(t, errors.As(err, &malformed))
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte(`{not json`))

	var malformed core.ErrorMalformedEnvelope
	assert.True(t, errors.As(err, &malformed))
}

func TestNormalizeUnrecognizedEventSurvives(t *testing.T) {
	event, err := Normalize([]byte(`{"event":"SomethingNew","id":"x1"}`))
	assert.NoError(t, err)
	assert.Equal(t, core.EventKind("SomethingNew"), event.Kind)
	assert.Equal(t, "x1", event.SubjectID)
}
