// Package policy bundles the security middleware into named profiles so
// every endpoint class gets the same treatment from one place.
package policy

import (
	"github.com/hmnpros/gateway/x/ratelimit"
)

// Profile names a class of endpoints.
type Profile int

const (
	PUBLIC Profile = iota
	API
	AUTH
	PAYMENT
	BOOKING
	ADMIN
	WEBHOOK
)

func (p Profile) String() string {
	switch p {
	case PUBLIC:
		return "public"
	case API:
		return "api"
	case AUTH:
		return "auth"
	case PAYMENT:
		return "payment"
	case BOOKING:
		return "booking"
	case ADMIN:
		return "admin"
	case WEBHOOK:
		return "webhook"
	}
	return "unknown"
}

type profileSpec struct {
	LimitType      ratelimit.LimitType
	AllowAnyOrigin bool
	Csrf           bool
	CsrfExempt     []string
	RequireAdmin   bool
}

var profileSpecs = map[Profile]profileSpec{
	PUBLIC:  {LimitType: ratelimit.LimitPublic, AllowAnyOrigin: true},
	API:     {LimitType: ratelimit.LimitAPIGeneral, Csrf: true},
	AUTH:    {LimitType: ratelimit.LimitAuthLogin, Csrf: true},
	PAYMENT: {LimitType: ratelimit.LimitPaymentCreate, Csrf: true},
	BOOKING: {LimitType: ratelimit.LimitBookingCreate, Csrf: true},
	ADMIN:   {LimitType: ratelimit.LimitAdmin, RequireAdmin: true},
	WEBHOOK: {LimitType: ratelimit.LimitAPIGeneral, Csrf: true, CsrfExempt: []string{"/api/webhooks"}},
}
