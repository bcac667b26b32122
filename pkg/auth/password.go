package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost       = 12 // tens of milliseconds per verification on commodity hardware
	SessionKeyLength = 32 // 256 bits
	MinPasswordLen   = 8
	MaxPasswordLen   = 128
)

// Common weak passwords to reject
var commonPasswords = map[string]bool{
	"password":    true,
	"12345678":    true,
	"qwerty123":   true,
	"password123": true,
	"abc12345":    true,
	"letmein1":    true,
	"welcome1":    true,
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword reports whether password matches the stored hash. A
// malformed or empty hash fails closed; the caller never learns why a
// mismatch occurred.
func VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// burnHash is a real digest at the production cost, generated once at
// startup. Comparing against it costs the same bcrypt work as a mismatch
// against a stored hash.
var burnHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("burn comparison target"), BcryptCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// BurnPasswordCheck runs a full bcrypt comparison against a fixed hash and
// discards the result. Paths with no stored hash to check call this so their
// timing matches a genuine comparison.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(burnHash, []byte(password))
}

// GenerateSessionToken returns an unguessable opaque token with 256 bits of
// entropy, URL-safe for cookie transport.
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateRecoveryToken returns a plain password-reset token along with the
// SHA-256 digest that is safe to persist.
func GenerateRecoveryToken() (plain string, digest string, err error) {
	bytes := make([]byte, SessionKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate recovery token: %w", err)
	}
	plain = base64.RawURLEncoding.EncodeToString(bytes)
	return plain, HashRecoveryToken(plain), nil
}

// HashRecoveryToken computes the storage digest of a plain recovery token.
func HashRecoveryToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// ValidatePassword enforces minimum password requirements
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLen)
	}
	if commonPasswords[strings.ToLower(password)] {
		return fmt.Errorf("password is too common")
	}
	return nil
}
