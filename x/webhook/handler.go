package webhook

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/util"
)

const defaultSignatureHeader = "x-wh-signature"

type Handler struct {
	service Service
	config  util.Config
}

func NewHandler(service Service, config util.Config) *Handler {
	return &Handler{service, config}
}

// Receive ingests one delivery. The response is 200 no matter what
// happened internally: the vendor retries aggressively on anything else
// and a retry storm of poison payloads helps nobody. Failures are
// visible in the delivery log and the live feed instead.
func (h Handler) Receive(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Webhook.Handler.Receive")
	defer span.End()

	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusOK, core.Ack{Success: false})
	}

	headerName := h.config.Security.SignatureHeader
	if headerName == "" {
		headerName = defaultSignatureHeader
	}
	signature := c.Request().Header.Get(headerName)

	_, ok := h.service.Process(ctx, rawBody, signature)
	return c.JSON(http.StatusOK, core.Ack{Success: ok})
}
