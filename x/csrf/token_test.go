package csrf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMintAndVerify(t *testing.T) {
	token, hash, err := MintToken()
	assert.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NotEqual(t, token, hash)

	assert.True(t, VerifyDoubleSubmit(token, hash))
	assert.False(t, VerifyDoubleSubmit("not-the-token", hash))
	assert.False(t, VerifyDoubleSubmit("", hash))
	assert.False(t, VerifyDoubleSubmit(token, ""))
}

func TestSignedTokenRoundTrip(t *testing.T) {
	issued := time.Now()
	signed := SignToken("secret", "tok123", "agent/1.0", "203.0.113.7", issued)

	err := VerifySignedToken("secret", signed, "agent/1.0", "203.0.113.7", issued.Add(time.Minute))
	assert.NoError(t, err)
}

func TestSignedTokenExpiry(t *testing.T) {
	issued := time.Now()
	signed := SignToken("secret", "tok123", "agent/1.0", "203.0.113.7", issued)

	err := VerifySignedToken("secret", signed, "agent/1.0", "203.0.113.7", issued.Add(16*time.Minute))
	assert.Error(t, err)
}

func TestSignedTokenContextMismatch(t *testing.T) {
	issued := time.Now()
	signed := SignToken("secret", "tok123", "agent/1.0", "203.0.113.7", issued)

	assert.Error(t, VerifySignedToken("secret", signed, "other-agent", "203.0.113.7", issued))
	assert.Error(t, VerifySignedToken("secret", signed, "agent/1.0", "198.51.100.1", issued))
	assert.Error(t, VerifySignedToken("wrong-secret", signed, "agent/1.0", "203.0.113.7", issued))
}

func TestSignedTokenMalformed(t *testing.T) {
	assert.Error(t, VerifySignedToken("secret", "not-a-token", "", "", time.Now()))
	assert.Error(t, VerifySignedToken("secret", "a.b.c.d", "", "", time.Now()))
	assert.Error(t, VerifySignedToken("secret", "tok.notanumber.sig", "", "", time.Now()))
}
