package auth

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_ProducesVerifiableHash(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("same password")
	assert.NoError(t, err)
	h2, err := HashPassword("same password")
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_FailsClosedOnBadHash(t *testing.T) {
	assert.False(t, VerifyPassword("", "anything"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "anything"))
}

func TestBurnPasswordCheck_CostsAFullComparison(t *testing.T) {
	// The burn hash must be a well-formed digest at the production cost,
	// otherwise bcrypt bails out before doing any key-derivation work and
	// the unknown-account path becomes measurably faster than a mismatch.
	cost, err := bcrypt.Cost(burnHash)
	assert.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)

	start := time.Now()
	BurnPasswordCheck("some attempted password")
	elapsed := time.Since(start)

	// A cost-12 comparison takes tens of milliseconds; the empty-hash
	// rejection in VerifyPassword returns in nanoseconds.
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)
}

func TestGenerateSessionToken_EntropyAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		assert.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true

		raw, err := base64.RawURLEncoding.DecodeString(token)
		assert.NoError(t, err)
		assert.Len(t, raw, SessionKeyLength)
	}
}

func TestGenerateRecoveryToken_DigestMatchesPlain(t *testing.T) {
	plain, digest, err := GenerateRecoveryToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, plain)
	assert.NotEqual(t, plain, digest)
	assert.Equal(t, HashRecoveryToken(plain), digest)

	// sha256 hex digest
	raw, err := hex.DecodeString(digest)
	assert.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestValidatePassword(t *testing.T) {
	tests := map[string]struct {
		password string
		wantErr  bool
	}{
		"acceptable":     {"str0ng-password", false},
		"minimum length": {"12ab34cd", false},
		"too short":      {"1234567", true},
		"too long":       {string(make([]byte, MaxPasswordLen+1)), true},
		"common":         {"password123", true},
		"common, mixed case": {"Password123", true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
