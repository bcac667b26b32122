package models

import "time"

// RecoveryToken is a single-use password reset credential. Only the SHA-256
// digest of the token is stored.
type RecoveryToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still redeem a password reset.
func (t *RecoveryToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
