package csrf

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"golang.org/x/exp/slices"
)

var tracer = otel.Tracer("csrf")

type Config struct {
	AllowedOrigins []string
	ExemptPrefixes []string
	Secret         string
	Production     bool
}

var protectedMethods = []string{
	http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// Middleware enforces the double-submit check on state-changing methods.
// Safe requests without a cookie get one minted on the way through, with
// the plaintext token exposed in the response header for the caller to
// embed in subsequent requests.
func Middleware(conf Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Csrf.Middleware")
			defer span.End()

			req := c.Request()

			for _, prefix := range conf.ExemptPrefixes {
				if strings.HasPrefix(req.URL.Path, prefix) {
					c.SetRequest(req.WithContext(ctx))
					return next(c)
				}
			}

			if !slices.Contains(protectedMethods, req.Method) {
				if _, err := c.Cookie(CookieName); err != nil {
					if token, err := issueCookie(c, conf.Production); err == nil {
						c.Response().Header().Set(HeaderName, token)
					}
				}
				c.SetRequest(req.WithContext(ctx))
				return next(c)
			}

			if !originAllowed(req, conf.AllowedOrigins) {
				slog.WarnContext(ctx, "csrf rejected: bad origin",
					slog.String("module", "csrf"),
					slog.String("origin", req.Header.Get(echo.HeaderOrigin)),
					slog.String("referer", req.Referer()),
					slog.String("remote", c.RealIP()),
				)
				return c.JSON(http.StatusForbidden, echo.Map{"error": "origin not allowed"})
			}

			submitted := req.Header.Get(HeaderName)
			if submitted == "" {
				submitted = c.QueryParam(FieldName)
			}
			if submitted == "" {
				submitted = c.FormValue(FieldName)
			}

			if submitted == "" {
				slog.WarnContext(ctx, "csrf rejected: missing token",
					slog.String("module", "csrf"),
					slog.String("remote", c.RealIP()),
				)
				return c.JSON(http.StatusForbidden, echo.Map{"error": "csrf token missing"})
			}

			if cookie, err := c.Cookie(CookieName); err == nil && VerifyDoubleSubmit(submitted, cookie.Value) {
				c.SetRequest(req.WithContext(ctx))
				return next(c)
			}

			// cookieless clients (embedded forms) post the signed variant
			if conf.Secret != "" {
				err := VerifySignedToken(conf.Secret, submitted, req.UserAgent(), req.Header.Get("X-Forwarded-For"), time.Now())
				if err == nil {
					c.SetRequest(req.WithContext(ctx))
					return next(c)
				}
			}

			slog.WarnContext(ctx, "csrf rejected: token mismatch",
				slog.String("module", "csrf"),
				slog.String("remote", c.RealIP()),
			)
			return c.JSON(http.StatusForbidden, echo.Map{"error": "csrf token invalid"})
		}
	}
}

func originAllowed(req *http.Request, allowed []string) bool {
	origin := req.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		if referer := req.Referer(); referer != "" {
			if u, err := url.Parse(referer); err == nil {
				origin = u.Scheme + "://" + u.Host
			}
		}
	}
	if origin == "" {
		return false
	}
	return slices.Contains(allowed, origin)
}

func issueCookie(c echo.Context, production bool) (string, error) {
	token, hash, err := MintToken()
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    hash,
		Path:     "/",
		Expires:  time.Now().Add(CookieLifetime),
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// Handler serves explicit token issuance for the booking form.
type Handler struct {
	secret     string
	production bool
}

func NewHandler(secret string, production bool) *Handler {
	return &Handler{secret: secret, production: production}
}

// Issue mints a token pair and returns the plaintext half, plus the
// signed variant for cookieless embeds when a secret is configured.
func (h Handler) Issue(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Csrf.Handler.Issue")
	defer span.End()

	token, err := issueCookie(c, h.production)
	if err != nil {
		span.RecordError(err)
		return err
	}

	data := echo.Map{"token": token}
	if h.secret != "" {
		req := c.Request()
		data["signed"] = SignToken(h.secret, token, req.UserAgent(), req.Header.Get("X-Forwarded-For"), time.Now())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}
