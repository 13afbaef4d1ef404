// Package booking accepts service booking requests from the public site,
// persists them, and forwards them to the CRM.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"
	"github.com/xinguang/go-recaptcha"
	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/client"
	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/util"
)

var tracer = otel.Tracer("booking")

// CreateRequest is the public booking submission shape.
type CreateRequest struct {
	ServiceType  string    `json:"serviceType"`
	RequestedAt  time.Time `json:"requestedAt"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Notes        string    `json:"notes"`
	QuotedCents  int64     `json:"quotedCents"`
	CaptchaToken string    `json:"captchaToken"`
}

type captchaVerifier interface {
	Verify(token string) error
}

type Service interface {
	Create(ctx context.Context, request CreateRequest) (core.Booking, error)
	Get(ctx context.Context, id string) (core.Booking, error)
	ResyncPending(ctx context.Context) (int, error)
}

type service struct {
	repository Repository
	crm        client.Client
	captcha    captchaVerifier
	config     util.Config
}

func NewService(repository Repository, crm client.Client, config util.Config) Service {
	var captcha captchaVerifier
	if config.Security.RecaptchaSecret != "" {
		verifier, err := recaptcha.NewWithSecert(config.Security.RecaptchaSecret)
		if err != nil {
			slog.Error("failed to initialize recaptcha verifier", slog.String("error", err.Error()))
		} else {
			captcha = verifier
		}
	} else {
		slog.Warn("recaptcha secret not configured. booking spam protection is disabled")
	}

	return &service{
		repository: repository,
		crm:        crm,
		captcha:    captcha,
		config:     config,
	}
}

func (s *service) Create(ctx context.Context, request CreateRequest) (core.Booking, error) {
	ctx, span := tracer.Start(ctx, "Booking.Service.Create")
	defer span.End()

	if request.ServiceType == "" || request.Email == "" || request.Phone == "" || request.FirstName == "" {
		return core.Booking{}, fmt.Errorf("missing required booking fields")
	}

	if s.captcha != nil {
		if err := s.captcha.Verify(request.CaptchaToken); err != nil {
			span.RecordError(err)
			return core.Booking{}, core.NewErrorPermissionDenied()
		}
	}

	booking := core.Booking{
		ID:          xid.New().String(),
		ServiceType: request.ServiceType,
		RequestedAt: request.RequestedAt,
		FirstName:   request.FirstName,
		LastName:    request.LastName,
		Email:       request.Email,
		Phone:       request.Phone,
		Address:     request.Address,
		Notes:       request.Notes,
		QuotedCents: request.QuotedCents,
		SyncStatus:  "pending_sync",
	}

	booking, err := s.repository.Create(ctx, booking)
	if err != nil {
		span.RecordError(err)
		return core.Booking{}, err
	}

	// Forward to the CRM best-effort. A failed forward leaves the booking
	// queued as pending_sync; the request itself still succeeds.
	contactID, err := s.crm.UpsertContact(ctx, client.ContactRequest{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Email:     request.Email,
		Phone:     request.Phone,
		Tags:      []string{"booking", request.ServiceType},
		Source:    "website",
	})
	if err != nil {
		span.RecordError(err)
		slog.Warn("crm contact forward failed. booking queued for sync",
			slog.String("bookingId", booking.ID),
			slog.String("error", err.Error()),
		)
		return booking, nil
	}

	_, err = s.crm.CreateOpportunity(ctx, client.OpportunityRequest{
		ContactID:     contactID,
		Name:          fmt.Sprintf("%s %s - %s", request.FirstName, request.LastName, request.ServiceType),
		Status:        "open",
		MonetaryValue: request.QuotedCents,
	})
	if err != nil {
		span.RecordError(err)
		slog.Warn("crm opportunity forward failed. booking queued for sync",
			slog.String("bookingId", booking.ID),
			slog.String("error", err.Error()),
		)
		return booking, nil
	}

	if err := s.repository.MarkSynced(ctx, booking.ID, contactID); err != nil {
		span.RecordError(err)
		return booking, nil
	}

	booking.SyncStatus = "synced"
	booking.CrmContactID = contactID
	return booking, nil
}

// ResyncPending retries the CRM forward for bookings whose original
// forward failed. Returns how many were brought to synced; individual
// failures stay queued for the next run.
func (s *service) ResyncPending(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Booking.Service.ResyncPending")
	defer span.End()

	pending, err := s.repository.ListPendingSync(ctx, 50)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	synced := 0
	for _, booking := range pending {
		contactID, err := s.crm.UpsertContact(ctx, client.ContactRequest{
			FirstName: booking.FirstName,
			LastName:  booking.LastName,
			Email:     booking.Email,
			Phone:     booking.Phone,
			Tags:      []string{"booking", booking.ServiceType},
			Source:    "website",
		})
		if err != nil {
			slog.Warn("booking resync: contact forward failed",
				slog.String("bookingId", booking.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		_, err = s.crm.CreateOpportunity(ctx, client.OpportunityRequest{
			ContactID:     contactID,
			Name:          fmt.Sprintf("%s %s - %s", booking.FirstName, booking.LastName, booking.ServiceType),
			Status:        "open",
			MonetaryValue: booking.QuotedCents,
		})
		if err != nil {
			slog.Warn("booking resync: opportunity forward failed",
				slog.String("bookingId", booking.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := s.repository.MarkSynced(ctx, booking.ID, contactID); err != nil {
			span.RecordError(err)
			continue
		}
		synced++
	}

	return synced, nil
}

func (s *service) Get(ctx context.Context, id string) (core.Booking, error) {
	ctx, span := tracer.Start(ctx, "Booking.Service.Get")
	defer span.End()

	return s.repository.Get(ctx, id)
}
