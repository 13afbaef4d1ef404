// Package webhook ingests CRM webhook deliveries: signature check,
// normalization into typed events, dispatch to domain handlers, and an
// unconditional acknowledgment to the sender.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/hmnpros/gateway/core"
)

// ValidateSignature checks the vendor HMAC-SHA256 signature over the raw
// body. With no secret configured validation passes trivially; that mode
// is for local development only and cmd/api refuses to start with it in
// production. A configured secret with a missing header fails closed.
func ValidateSignature(rawBody []byte, signatureHeader string, secret string) error {
	if secret == "" {
		return nil
	}
	if signatureHeader == "" {
		return core.NewErrorInvalidSignature()
	}

	signatureHeader = strings.TrimPrefix(signatureHeader, "sha256=")
	provided, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return core.NewErrorInvalidSignature()
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return core.NewErrorInvalidSignature()
	}
	return nil
}

// SignBody computes the signature the vendor would send. Used by tests
// and the admin test-alert endpoint.
func SignBody(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
