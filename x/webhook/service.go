package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/util"
)

var tracer = otel.Tracer("webhook")

var deliveriesCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hmnp",
		Name:      "webhook_deliveries_total",
		Help:      "Webhook deliveries by outcome",
	},
	[]string{"outcome"},
)

const (
	OutcomeHandled   = "handled"
	OutcomeUnhandled = "unhandled"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Service runs the full ingestion pipeline for one delivery. It never
// returns an error: every internal failure is folded into the outcome,
// logged, and recorded in the delivery log, because the sender is
// acknowledged with 200 regardless.
type Service interface {
	Process(ctx context.Context, rawBody []byte, signatureHeader string) (outcome string, ok bool)
	Repository() Repository
}

type service struct {
	repository Repository
	dispatcher *Dispatcher
	config     util.Config
}

func NewService(repository Repository, dispatcher *Dispatcher, config util.Config) Service {
	if config.Security.WebhookSecret == "" {
		slog.Warn("webhook signature validation is DISABLED: no secret configured",
			slog.String("module", "webhook"),
		)
	}
	return &service{
		repository: repository,
		dispatcher: dispatcher,
		config:     config,
	}
}

func (s *service) Repository() Repository {
	return s.repository
}

func (s *service) Process(ctx context.Context, rawBody []byte, signatureHeader string) (string, bool) {
	ctx, span := tracer.Start(ctx, "Webhook.Service.Process")
	defer span.End()

	delivery := core.WebhookDelivery{
		ID:       xid.New().String(),
		BodySize: len(rawBody),
	}

	if err := ValidateSignature(rawBody, signatureHeader, s.config.Security.WebhookSecret); err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "webhook signature rejected",
			slog.String("module", "webhook"),
			slog.Int("bodySize", len(rawBody)),
		)
		s.finish(ctx, delivery, OutcomeRejected, err.Error())
		return OutcomeRejected, false
	}

	event, err := Normalize(rawBody)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "webhook envelope malformed",
			slog.String("module", "webhook"),
			slog.String("error", err.Error()),
		)
		s.finish(ctx, delivery, OutcomeMalformed, err.Error())
		return OutcomeMalformed, false
	}

	delivery.EventKind = string(event.Kind)
	delivery.SubjectID = event.SubjectID
	delivery.LocationID = event.LocationID

	result := s.dispatcher.Dispatch(ctx, event)

	outcome := OutcomeHandled
	if result.Action == "ignored" {
		outcome = OutcomeUnhandled
	}
	if !result.Success {
		outcome = OutcomeFailed
	}

	s.finish(ctx, delivery, outcome, result.Error)
	return outcome, result.Success
}

// finish records the delivery and feeds the admin live channel. Failures
// here are internal bookkeeping and only ever logged.
func (s *service) finish(ctx context.Context, delivery core.WebhookDelivery, outcome string, errText string) {
	delivery.Outcome = outcome
	delivery.Error = errText
	deliveriesCounter.WithLabelValues(outcome).Inc()

	if err := s.repository.Log(ctx, delivery); err != nil {
		slog.ErrorContext(ctx, "failed to record webhook delivery",
			slog.String("module", "webhook"),
			slog.String("deliveryId", delivery.ID),
			slog.String("error", err.Error()),
		)
	}

	feed, err := json.Marshal(map[string]any{
		"type":      "webhook",
		"kind":      delivery.EventKind,
		"subjectId": delivery.SubjectID,
		"outcome":   outcome,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err == nil {
		if err := s.repository.PublishEvent(ctx, string(feed)); err != nil {
			slog.WarnContext(ctx, "failed to publish feed event",
				slog.String("module", "webhook"),
				slog.String("error", err.Error()),
			)
		}
	}
}
