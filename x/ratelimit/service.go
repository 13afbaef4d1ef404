package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/x/util"
)

var tracer = otel.Tracer("ratelimit")

// Service admits or denies requests against fixed windows.
type Service interface {
	Check(ctx context.Context, clientID string, limitType LimitType, endpoint string) (Decision, error)
	Status(ctx context.Context) Status
}

// Status is what the admin dashboard sees.
type Status struct {
	Disabled bool                  `json:"disabled"`
	Degraded bool                  `json:"degraded"`
	Rules    map[string]RuleStatus `json:"rules"`
}

type RuleStatus struct {
	WindowMs    int64 `json:"windowMs"`
	MaxRequests int   `json:"maxRequests"`
}

type service struct {
	primary  Store
	fallback Store
	rules    map[LimitType]limitRule
	disabled bool
	degraded atomic.Bool
}

// NewService wires the limiter with its primary store and the in-process
// fallback used when the primary errors out. The limiter never fails a
// request hard: worst case it degrades to process-local counting.
func NewService(primary Store, fallback Store, conf util.RateLimit) Service {
	return &service{
		primary:  primary,
		fallback: fallback,
		rules:    Rules(conf),
		disabled: conf.Disabled,
	}
}

func (s *service) Check(ctx context.Context, clientID string, limitType LimitType, endpoint string) (Decision, error) {
	ctx, span := tracer.Start(ctx, "RateLimit.Service.Check")
	defer span.End()

	rule, ok := s.rules[limitType]
	if !ok {
		rule = s.rules[LimitAPIGeneral]
	}

	if s.disabled {
		return Decision{
			Allowed:   true,
			Remaining: rule.MaxRequests,
			Limit:     rule.MaxRequests,
			ResetTime: time.Now().Add(rule.Window),
		}, nil
	}

	if endpoint == "" {
		endpoint = "default"
	}
	key := fmt.Sprintf("rl:%s:%s:%s", limitType, clientID, endpoint)

	// Denied calls still advance the counter, so the stored count can
	// run past MaxRequests within a window. Admission only compares
	// against the limit; the overshoot never leaks into Remaining.
	count, ttl, err := s.primary.Increment(ctx, key, rule.Window)
	if err != nil {
		span.RecordError(err)
		if s.degraded.CompareAndSwap(false, true) {
			slog.WarnContext(ctx, "rate limiter degraded to in-process store",
				slog.String("module", "ratelimit"),
				slog.String("error", err.Error()),
			)
		}
		count, ttl, err = s.fallback.Increment(ctx, key, rule.Window)
		if err != nil {
			span.RecordError(err)
			return Decision{}, err
		}
	} else if s.degraded.CompareAndSwap(true, false) {
		slog.InfoContext(ctx, "rate limiter recovered shared store",
			slog.String("module", "ratelimit"),
		)
	}

	decision := Decision{
		Allowed:   count <= int64(rule.MaxRequests),
		Remaining: rule.MaxRequests - int(count),
		Limit:     rule.MaxRequests,
		ResetTime: time.Now().Add(ttl),
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}

	if !decision.Allowed {
		slog.WarnContext(ctx, "rate limit exceeded",
			slog.String("module", "ratelimit"),
			slog.String("clientId", clientID),
			slog.String("limitType", string(limitType)),
			slog.String("endpoint", endpoint),
			slog.Time("resetTime", decision.ResetTime),
		)
	}

	return decision, nil
}

func (s *service) Status(ctx context.Context) Status {
	rules := make(map[string]RuleStatus, len(s.rules))
	for limitType, rule := range s.rules {
		rules[string(limitType)] = RuleStatus{
			WindowMs:    rule.Window.Milliseconds(),
			MaxRequests: rule.MaxRequests,
		}
	}
	return Status{
		Disabled: s.disabled,
		Degraded: s.degraded.Load(),
		Rules:    rules,
	}
}
