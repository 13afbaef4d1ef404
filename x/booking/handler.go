package booking

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hmnpros/gateway/core"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// Create accepts a booking submission and returns the stored record.
func (h Handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Booking.Handler.Create")
	defer span.End()

	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	booking, err := h.service.Create(ctx, req)
	if err != nil {
		var denied core.ErrorPermissionDenied
		if errors.As(err, &denied) {
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "captcha verification failed"})
		}
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": booking})
}

// Resync retries the CRM forward for queued bookings. Admin-triggered.
func (h Handler) Resync(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Booking.Handler.Resync")
	defer span.End()

	synced, err := h.service.ResyncPending(ctx)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "resync failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"synced": synced}})
}

// Get returns a booking and its CRM sync status.
func (h Handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Booking.Handler.Get")
	defer span.End()

	id := c.Param("id")

	booking, err := h.service.Get(ctx, id)
	if err != nil {
		var notFound core.ErrorNotFound
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "booking not found"})
		}
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": booking})
}
