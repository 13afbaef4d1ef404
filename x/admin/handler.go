package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// Deliveries returns recent webhook deliveries, newest first.
// Query params: limit, kind, outcome.
func (h Handler) Deliveries(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Admin.Handler.Deliveries")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	kind := c.QueryParam("kind")
	outcome := c.QueryParam("outcome")

	deliveries, err := h.service.RecentDeliveries(ctx, limit, kind, outcome)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": deliveries})
}

// DeliveryStats returns aggregate delivery counts for the given window.
// Query param: hours (default 24).
func (h Handler) DeliveryStats(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Admin.Handler.DeliveryStats")
	defer span.End()

	hours, _ := strconv.Atoi(c.QueryParam("hours"))

	stats, err := h.service.DeliveryStats(ctx, hours)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}

// RateLimits returns the configured rules and the degraded flag.
func (h Handler) RateLimits(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Admin.Handler.RateLimits")
	defer span.End()

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.service.RateLimitStatus(ctx)})
}

// ClearCache flushes the memcached tier.
func (h Handler) ClearCache(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Admin.Handler.ClearCache")
	defer span.End()

	if err := h.service.ClearCache(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// TestAlert publishes a synthetic event to the live feed.
func (h Handler) TestAlert(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Admin.Handler.TestAlert")
	defer span.End()

	if err := h.service.SendTestAlert(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
