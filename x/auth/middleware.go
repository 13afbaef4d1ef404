package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
)

// IdentifySession parses a Bearer session token if one is present.
// Absence or invalidity is not an error here; Restrict decides access.
func IdentifySession(s Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Auth.IdentifySession")
			defer span.End()

			authHeader := c.Request().Header.Get("authorization")
			if authHeader != "" {
				split := strings.Split(authHeader, " ")
				if len(split) == 2 && split[0] == "Bearer" {
					claims, err := s.ValidateToken(ctx, split[1])
					if err == nil {
						c.Set(RequesterIdCtxKey, claims.Subject)
						c.Set(RequesterRoleCtxKey, claims.Role)
						c.Set(SessionJtiCtxKey, claims.JWTID)
						span.SetAttributes(attribute.String("RequesterId", claims.Subject))
						span.SetAttributes(attribute.String("RequesterRole", claims.Role))
					} else {
						span.RecordError(err)
					}
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Restrict short-circuits with 403 unless the request carries the
// required principal.
func Restrict(principal Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Auth.Restrict")
			defer span.End()

			role, _ := c.Get(RequesterRoleCtxKey).(string)

			switch principal {
			case ISADMIN:
				if role != "admin" {
					return c.JSON(http.StatusForbidden, echo.Map{
						"error":  "you are not authorized to perform this action",
						"detail": "you are not admin",
					})
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
