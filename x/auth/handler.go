package auth

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

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login issues an admin session token.
func (h Handler) Login(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Auth.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	token, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		var denied core.ErrorPermissionDenied
		if errors.As(err, &denied) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid credentials"})
		}
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"token": token}})
}

// Logout revokes the current session.
func (h Handler) Logout(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Auth.Handler.Logout")
	defer span.End()

	jti, _ := c.Get(SessionJtiCtxKey).(string)
	if jti == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "no active session"})
	}

	if err := h.service.Logout(ctx, jti); err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
