// Package csrf implements the double-submit-cookie defense used on the
// booking and admin form endpoints, plus an HMAC signed-token variant
// for short-lived embedded forms.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// CookieName holds the SHA-256 hash of the issued token, never the
	// token itself.
	CookieName = "hmnp_csrf"
	HeaderName = "X-CSRF-Token"
	FieldName  = "csrf_token"

	CookieLifetime = 24 * time.Hour
	signedLifetime = 15 * time.Minute

	tokenBytes = 32
)

// MintToken returns a fresh token and the hash to store in the cookie.
func MintToken() (token string, hash string, err error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", errors.Wrap(err, "failed to mint csrf token")
	}
	token = hex.EncodeToString(raw)
	return token, HashToken(token), nil
}

// HashToken is the one-way projection stored server-side (in the cookie).
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyDoubleSubmit re-hashes the submitted token and compares it to the
// stored hash in constant time.
func VerifyDoubleSubmit(submitted string, storedHash string) bool {
	if submitted == "" || storedHash == "" {
		return false
	}
	computed := HashToken(submitted)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// SignToken produces the signed variant: token.timestamp.signature, where
// the signature binds the token to the client's user agent and forwarded
// address at issuance time.
func SignToken(secret string, token string, userAgent string, forwardedFor string, issuedAt time.Time) string {
	ts := strconv.FormatInt(issuedAt.Unix(), 10)
	sig := signPayload(secret, token, ts, userAgent, forwardedFor)
	return token + "." + ts + "." + sig
}

// VerifySignedToken checks expiry and recomputes the signature over the
// presented client context.
func VerifySignedToken(secret string, signed string, userAgent string, forwardedFor string, now time.Time) error {
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed signed token")
	}
	token, ts, sig := parts[0], parts[1], parts[2]

	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signed token timestamp")
	}
	if now.Sub(time.Unix(issued, 0)) > signedLifetime {
		return fmt.Errorf("signed token expired")
	}

	expected := signPayload(secret, token, ts, userAgent, forwardedFor)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return fmt.Errorf("signed token signature mismatch")
	}
	return nil
}

func signPayload(secret string, token string, ts string, userAgent string, forwardedFor string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token + "|" + ts + "|" + userAgent + "|" + forwardedFor))
	return hex.EncodeToString(mac.Sum(nil))
}
