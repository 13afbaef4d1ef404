package webhook_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hmnpros/gateway/x/util"
	"github.com/hmnpros/gateway/x/webhook"
	mock_webhook "github.com/hmnpros/gateway/x/webhook/mock"
)

func newWebhookEcho(t *testing.T, secret string) *echo.Echo {
	ctrl := gomock.NewController(t)
	repo := mock_webhook.NewMockRepository(ctrl)
	repo.EXPECT().Log(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	repo.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	config := util.Config{}
	config.Security.WebhookSecret = secret

	service := webhook.NewService(repo, webhook.NewDispatcher(), config)
	handler := webhook.NewHandler(service, config)

	e := echo.New()
	e.POST("/api/webhooks/crm", handler.Receive)
	return e
}

func TestReceiveAlwaysAcks200(t *testing.T) {
	e := newWebhookEcho(t, "shared-secret")

	cases := []struct {
		name      string
		body      string
		signature string
		success   bool
	}{
		{"valid delivery", `{"event":"TaskCreate","task":{"id":"t1"}}`, "", true},
		{"missing event field", `{"contact":{"id":"abc123"}}`, "", false},
		{"bad signature", `{"event":"ContactCreate"}`, "deadbeef", false},
	}

	for _, tc := range cases {
		body := []byte(tc.body)
		signature := tc.signature
		if signature == "" {
			signature = webhook.SignBody(body, "shared-secret")
		}

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/crm", strings.NewReader(tc.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("x-wh-signature", signature)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, tc.name)
		if tc.success {
			assert.JSONEq(t, `{"success":true}`, rec.Body.String(), tc.name)
		} else {
			assert.JSONEq(t, `{"success":false}`, rec.Body.String(), tc.name)
		}
	}
}

func TestReceiveWithoutSecretSkipsSignature(t *testing.T) {
	e := newWebhookEcho(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/crm", strings.NewReader(`{"event":"TaskCreate","task":{"id":"t1"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
