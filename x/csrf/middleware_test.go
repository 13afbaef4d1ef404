package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testOrigin = "https://houstonmobilenotarypros.com"

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	conf := Config{
		AllowedOrigins: []string{testOrigin},
		ExemptPrefixes: []string{"/api/webhooks"},
	}
	e.POST("/api/bookings", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, echo.Map{"success": true})
	}, Middleware(conf))
	e.POST("/api/webhooks/crm", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, Middleware(conf))
	e.GET("/api/quote", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, Middleware(conf))
	return e
}

func TestPostWithoutTokenIsRejected(t *testing.T) {
	e := newProtectedEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(echo.HeaderOrigin, testOrigin)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostWithMismatchedTokenIsRejected(t *testing.T) {
	e := newProtectedEcho()

	_, hash, err := MintToken()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(echo.HeaderOrigin, testOrigin)
	req.Header.Set(HeaderName, "someone-elses-token")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: hash})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostWithMatchingTokenPasses(t *testing.T) {
	e := newProtectedEcho()

	token, hash, err := MintToken()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(echo.HeaderOrigin, testOrigin)
	req.Header.Set(HeaderName, token)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: hash})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPostFromUnknownOriginIsRejected(t *testing.T) {
	e := newProtectedEcho()

	token, hash, err := MintToken()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	req.Header.Set(HeaderName, token)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: hash})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefererFallbackForOriginCheck(t *testing.T) {
	e := newProtectedEcho()

	token, hash, err := MintToken()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set("Referer", testOrigin+"/book-now")
	req.Header.Set(HeaderName, token)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: hash})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestExemptPrefixSkipsValidation(t *testing.T) {
	e := newProtectedEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/crm", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSafeRequestMintsCookie(t *testing.T) {
	e := newProtectedEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/quote", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var minted *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == CookieName {
			minted = cookie
		}
	}
	if assert.NotNil(t, minted) {
		assert.True(t, minted.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, minted.SameSite)
		// header carries the plaintext matching the hashed cookie
		token := rec.Header().Get(HeaderName)
		assert.True(t, VerifyDoubleSubmit(token, minted.Value))
	}
}

func TestIssueHandler(t *testing.T) {
	e := echo.New()
	e.GET("/api/csrf", NewHandler("", false).Issue)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestSignedTokenPassesWithoutCookie(t *testing.T) {
	e := echo.New()
	conf := Config{
		AllowedOrigins: []string{testOrigin},
		Secret:         "embed-secret",
	}
	e.POST("/api/bookings", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, echo.Map{"success": true})
	}, Middleware(conf))

	signed := SignToken("embed-secret", "tok123", "agent/1.0", "", time.Now())

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(echo.HeaderOrigin, testOrigin)
	req.Header.Set("User-Agent", "agent/1.0")
	req.Header.Set(HeaderName, signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}
