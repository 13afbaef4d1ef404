package core

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// WebhookDelivery is the persistent log of every webhook POST the gateway
// acknowledged, regardless of how processing went. This is the only place
// downstream failures are observable, since the sender always sees 200.
type WebhookDelivery struct {
	ID         string    `json:"id" gorm:"primaryKey;type:char(20)"`
	EventKind  string    `json:"eventKind" gorm:"type:text;index"`
	SubjectID  string    `json:"subjectId" gorm:"type:text;index"`
	LocationID string    `json:"locationId" gorm:"type:text"`
	BodySize   int       `json:"bodySize"`
	Outcome    string    `json:"outcome" gorm:"type:text;index"` // handled / unhandled / malformed / failed
	Error      string    `json:"error,omitempty" gorm:"type:text"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// Contact mirrors the CRM contact record, maintained from webhook events.
type Contact struct {
	ID         string         `json:"id" gorm:"primaryKey;type:text"`
	LocationID string         `json:"locationId" gorm:"type:text;index"`
	FirstName  string         `json:"firstName" gorm:"type:text"`
	LastName   string         `json:"lastName" gorm:"type:text"`
	Email      string         `json:"email" gorm:"type:text;index"`
	Phone      string         `json:"phone" gorm:"type:text"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`
	DndEnabled bool           `json:"dnd"`
	MergedInto *string        `json:"mergedInto,omitempty" gorm:"type:text;default:null"`
	CDate      time.Time      `json:"cdate" gorm:"->;<-:create;autoCreateTime"`
	MDate      time.Time      `json:"mdate" gorm:"autoUpdateTime"`
	DDate      gorm.DeletedAt `json:"-" gorm:"index"`
}

type Opportunity struct {
	ID            string         `json:"id" gorm:"primaryKey;type:text"`
	LocationID    string         `json:"locationId" gorm:"type:text;index"`
	ContactID     string         `json:"contactId" gorm:"type:text;index"`
	Name          string         `json:"name" gorm:"type:text"`
	PipelineID    string         `json:"pipelineId" gorm:"type:text"`
	StageID       string         `json:"stageId" gorm:"type:text"`
	Status        string         `json:"status" gorm:"type:text"`
	MonetaryValue int64          `json:"monetaryValue"`
	CDate         time.Time      `json:"cdate" gorm:"->;<-:create;autoCreateTime"`
	MDate         time.Time      `json:"mdate" gorm:"autoUpdateTime"`
	DDate         gorm.DeletedAt `json:"-" gorm:"index"`
}

type Appointment struct {
	ID         string         `json:"id" gorm:"primaryKey;type:text"`
	LocationID string         `json:"locationId" gorm:"type:text;index"`
	ContactID  string         `json:"contactId" gorm:"type:text;index"`
	CalendarID string         `json:"calendarId" gorm:"type:text"`
	Title      string         `json:"title" gorm:"type:text"`
	Status     string         `json:"status" gorm:"type:text;index"`
	StartTime  time.Time      `json:"startTime" gorm:"type:timestamp with time zone"`
	EndTime    time.Time      `json:"endTime" gorm:"type:timestamp with time zone"`
	Address    string         `json:"address" gorm:"type:text"`
	CDate      time.Time      `json:"cdate" gorm:"->;<-:create;autoCreateTime"`
	MDate      time.Time      `json:"mdate" gorm:"autoUpdateTime"`
	DDate      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Booking is a booking-form submission taken directly by the gateway,
// before (and independently of) its sync into the CRM.
type Booking struct {
	ID           string    `json:"id" gorm:"primaryKey;type:char(20)"`
	ServiceType  string    `json:"serviceType" gorm:"type:text"`
	RequestedAt  time.Time `json:"requestedAt" gorm:"type:timestamp with time zone"`
	FirstName    string    `json:"firstName" gorm:"type:text"`
	LastName     string    `json:"lastName" gorm:"type:text"`
	Email        string    `json:"email" gorm:"type:text;index"`
	Phone        string    `json:"phone" gorm:"type:text"`
	Address      string    `json:"address" gorm:"type:text"`
	Notes        string    `json:"notes" gorm:"type:text"`
	QuotedCents  int64     `json:"quotedCents"`
	SyncStatus   string    `json:"syncStatus" gorm:"type:text;index"` // synced / pending_sync
	CrmContactID string    `json:"crmContactId,omitempty" gorm:"type:text"`
	CDate        time.Time `json:"cdate" gorm:"->;<-:create;autoCreateTime"`
	MDate        time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
