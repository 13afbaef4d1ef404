package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deniedCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hmnp",
		Name:      "ratelimit_denied_total",
		Help:      "Requests denied by the rate limiter",
	},
	[]string{"limit_type"},
)

// ClientIDCtxKey is where upstream auth middleware leaves the requester
// id. The limiter prefers it over the source IP.
const ClientIDCtxKey = "requesterId"

// Middleware enforces the given limit type on the wrapped routes.
// X-RateLimit-* headers are set on every response; denials get 429 with
// Retry-After.
func Middleware(service Service, limitType LimitType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "RateLimit.Middleware")
			defer span.End()

			clientID, _ := c.Get(ClientIDCtxKey).(string)
			if clientID == "" {
				clientID = c.RealIP()
			}

			decision, err := service.Check(ctx, clientID, limitType, c.Path())
			if err != nil {
				// downgraded behavior is acceptable, hard failure is not
				span.RecordError(err)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetTime.Unix(), 10))

			if !decision.Allowed {
				deniedCounter.WithLabelValues(string(limitType)).Inc()
				retryAfter := int(decision.RetryAfter().Seconds()) + 1
				header.Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":      "too many requests",
					"retryAfter": retryAfter,
				})
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
