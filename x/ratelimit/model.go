package ratelimit

import (
	"time"

	"github.com/hmnpros/gateway/x/util"
)

// LimitType names a rate-limit bucket class. Each type carries its own
// fixed window and quota; the tuple (type, client, endpoint) is the key.
type LimitType string

const (
	LimitBookingCreate LimitType = "booking_create"
	LimitAuthLogin     LimitType = "auth_login"
	LimitPaymentCreate LimitType = "payment_create"
	LimitAPIGeneral    LimitType = "api_general"
	LimitPublic        LimitType = "public"
	LimitAdmin         LimitType = "admin"
)

type limitRule struct {
	Window      time.Duration
	MaxRequests int
}

var defaultRules = map[LimitType]limitRule{
	LimitBookingCreate: {Window: 15 * time.Minute, MaxRequests: 5},
	LimitAuthLogin:     {Window: 15 * time.Minute, MaxRequests: 10},
	LimitPaymentCreate: {Window: time.Hour, MaxRequests: 10},
	LimitAPIGeneral:    {Window: time.Minute, MaxRequests: 60},
	LimitPublic:        {Window: time.Minute, MaxRequests: 100},
	LimitAdmin:         {Window: time.Minute, MaxRequests: 30},
}

// Rules resolves the effective rule table from config overrides.
func Rules(conf util.RateLimit) map[LimitType]limitRule {
	rules := make(map[LimitType]limitRule, len(defaultRules))
	for limitType, rule := range defaultRules {
		if override, ok := conf.Types[string(limitType)]; ok {
			if override.WindowMs > 0 {
				rule.Window = time.Duration(override.WindowMs) * time.Millisecond
			}
			if override.MaxRequests > 0 {
				rule.MaxRequests = override.MaxRequests
			}
		}
		rules[limitType] = rule
	}
	return rules
}

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetTime time.Time `json:"resetTime"`
}

func (d Decision) RetryAfter() time.Duration {
	retry := time.Until(d.ResetTime)
	if retry < 0 {
		return 0
	}
	return retry
}
