package jwt

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateAndValidate(t *testing.T) {
	claims := Claims{
		Issuer:         "hmnp-gateway",
		Subject:        "admin-session",
		Audience:       "houstonmobilenotarypros.com",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
		IssuedAt:       strconv.FormatInt(time.Now().Unix(), 10),
		JWTID:          "jti-1",
		Role:           "admin",
	}

	token, err := Create(claims, "session-secret")
	assert.NoError(t, err)

	parsed, err := Validate(token, "session-secret")
	assert.NoError(t, err)
	assert.Equal(t, "admin", parsed.Role)
	assert.Equal(t, "jti-1", parsed.JWTID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := Create(Claims{Subject: "admin-session"}, "session-secret")
	assert.NoError(t, err)

	_, err = Validate(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	claims := Claims{
		Subject:        "admin-session",
		ExpirationTime: strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
	}
	token, err := Create(claims, "session-secret")
	assert.NoError(t, err)

	_, err = Validate(token, "session-secret")
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := Validate("not-a-jwt", "session-secret")
	assert.Error(t, err)

	_, err = Validate("a.b", "session-secret")
	assert.Error(t, err)
}
