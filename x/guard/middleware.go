// Package guard attaches defensive headers and CORS policy to every
// response and screens requests against known attack signatures before
// they reach any handler.
package guard

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"golang.org/x/exp/slices"
)

var tracer = otel.Tracer("guard")

// CORS describes the cross-origin policy for one endpoint class.
type CORS struct {
	AllowedOrigins   []string
	AllowAnyOrigin   bool
	AllowCredentials bool
	AllowedMethods   []string
	AllowedHeaders   []string
}

var defaultMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

var defaultHeaders = []string{
	"Content-Type", "Authorization", "X-CSRF-Token", "X-Requested-With",
}

// Headers wraps a handler so every response, including rejections
// produced further down the chain, carries the protective header bundle
// and the CORS policy. Preflight requests are answered here and never
// reach the inner handler.
func Headers(cors CORS, production bool) echo.MiddlewareFunc {
	methods := cors.AllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}
	headers := cors.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultHeaders
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(headers, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Guard.Headers")
			defer span.End()

			res := c.Response().Header()

			res.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			res.Set("X-Frame-Options", "DENY")
			res.Set("X-Content-Type-Options", "nosniff")
			res.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			res.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if production {
				res.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			res.Set("Vary", "Origin")
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if cors.AllowAnyOrigin {
				res.Set(echo.HeaderAccessControlAllowOrigin, "*")
			} else if origin != "" && slices.Contains(cors.AllowedOrigins, origin) {
				res.Set(echo.HeaderAccessControlAllowOrigin, origin)
				if cors.AllowCredentials {
					res.Set(echo.HeaderAccessControlAllowCredentials, "true")
				}
			}

			if c.Request().Method == http.MethodOptions {
				res.Set(echo.HeaderAccessControlAllowMethods, allowMethods)
				res.Set(echo.HeaderAccessControlAllowHeaders, allowHeaders)
				res.Set(echo.HeaderAccessControlMaxAge, "86400")
				return c.NoContent(http.StatusOK)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
