package policy

import (
	"github.com/labstack/echo/v4"

	"github.com/hmnpros/gateway/x/auth"
	"github.com/hmnpros/gateway/x/csrf"
	"github.com/hmnpros/gateway/x/guard"
	"github.com/hmnpros/gateway/x/ratelimit"
	"github.com/hmnpros/gateway/x/util"
)

// Composer turns a profile into a concrete middleware chain.
type Composer struct {
	limiter ratelimit.Service
	auth    auth.Service
	config  util.Config
}

func NewComposer(limiter ratelimit.Service, authService auth.Service, config util.Config) *Composer {
	return &Composer{
		limiter: limiter,
		auth:    authService,
		config:  config,
	}
}

// Middlewares returns the chain for a profile, outermost first:
// headers+CORS, request validation, session identification, rate
// limiting, CSRF, then the admin gate where required. Headers run first
// so even rejected requests carry the protective bundle, and the limiter
// runs before CSRF so unauthenticated probing is throttled before any
// token work.
func (composer *Composer) Middlewares(profile Profile) []echo.MiddlewareFunc {
	spec, ok := profileSpecs[profile]
	if !ok {
		spec = profileSpecs[PUBLIC]
	}

	cors := guard.CORS{
		AllowedOrigins:   composer.config.Security.AllowedOrigins,
		AllowAnyOrigin:   spec.AllowAnyOrigin,
		AllowCredentials: !spec.AllowAnyOrigin,
	}

	chain := []echo.MiddlewareFunc{
		guard.Headers(cors, composer.config.Server.Production),
		guard.Validate(),
		auth.IdentifySession(composer.auth),
		ratelimit.Middleware(composer.limiter, spec.LimitType),
	}

	if spec.Csrf {
		chain = append(chain, csrf.Middleware(csrf.Config{
			AllowedOrigins: composer.config.Security.AllowedOrigins,
			ExemptPrefixes: spec.CsrfExempt,
			Secret:         composer.config.Security.CsrfSecret,
			Production:     composer.config.Server.Production,
		}))
	}

	if spec.RequireAdmin {
		chain = append(chain, auth.Restrict(auth.ISADMIN))
	}

	return chain
}
