package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/jwt"
	"github.com/hmnpros/gateway/x/util"
)

var tracer = otel.Tracer("auth")

const sessionLifetime = 30 * time.Minute

// syntactically valid hash used only to equalize login timing
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service issues and validates admin sessions.
type Service interface {
	Login(ctx context.Context, username string, password string) (string, error)
	Logout(ctx context.Context, jti string) error
	ValidateToken(ctx context.Context, token string) (jwt.Claims, error)
}

type service struct {
	repository jwt.Repository
	config     util.Config
}

func NewService(repository jwt.Repository, config util.Config) Service {
	return &service{repository: repository, config: config}
}

// Login checks credentials against the configured admin users and issues
// a session token.
func (s *service) Login(ctx context.Context, username string, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	var admin *util.Admin
	for i := range s.config.Admins {
		if s.config.Admins[i].Username == username {
			admin = &s.config.Admins[i]
			break
		}
	}
	if admin == nil {
		// burn a comparison anyway so user enumeration costs the same
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return "", core.NewErrorPermissionDenied()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		span.RecordError(err)
		return "", core.NewErrorPermissionDenied()
	}

	now := time.Now()
	claims := jwt.Claims{
		Issuer:         s.config.Server.SiteFQDN,
		Subject:        username,
		Audience:       sessionAudience,
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(sessionLifetime).Unix(), 10),
		JWTID:          xid.New().String(),
		Role:           "admin",
	}

	return jwt.Create(claims, s.config.Security.SessionSecret)
}

// Logout revokes the session id for the remainder of its lifetime.
func (s *service) Logout(ctx context.Context, jti string) error {
	ctx, span := tracer.Start(ctx, "Auth.Service.Logout")
	defer span.End()

	return s.repository.Revoke(ctx, jti, sessionLifetime)
}

// ValidateToken verifies signature, expiry, audience and revocation.
func (s *service) ValidateToken(ctx context.Context, token string) (jwt.Claims, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.ValidateToken")
	defer span.End()

	claims, err := jwt.Validate(token, s.config.Security.SessionSecret)
	if err != nil {
		span.RecordError(err)
		return claims, err
	}

	if claims.Audience != sessionAudience {
		return claims, core.NewErrorPermissionDenied()
	}

	revoked, err := s.repository.IsRevoked(ctx, claims.JWTID)
	if err != nil {
		span.RecordError(err)
		return claims, err
	}
	if revoked {
		return claims, core.NewErrorPermissionDenied()
	}

	return claims, nil
}
