package models

import "time"

// Session is server-side proof of a successful authentication. The token is
// opaque and high-entropy; it is never derived from user data.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry. Expiry is checked
// on every read; the background sweep is only a storage reclamation.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
