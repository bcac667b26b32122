package models

import (
	"strings"
	"time"
)

// Role is the closed set of privilege tiers.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Status is the closed set of account states.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

// User is both a registered principal and a public provider listing.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // empty for users registered without an email
	PasswordHash string // empty for users without a local password
	Phone        string
	BirthDate    time.Time

	// Listing attributes
	Province     string
	Municipality string
	Neighborhood string
	Services     []string
	ContractType string
	Availability string
	FacebookURL  *string
	InstagramURL *string
	TikTokURL    *string
	AvatarURL    *string

	Role   Role
	Status Status

	// Read-model fields maintained by the review subsystem
	AverageRating float64
	TotalReviews  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name is the display name, derived from the canonical name parts on every read.
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Age computes the user's age in whole years at the given instant.
func (u *User) Age(now time.Time) int {
	years := now.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// IsAdmin reports whether the user currently holds admin privileges.
// A suspended or inactive admin loses privileges immediately.
func (u *User) IsAdmin() bool {
	if u.Status != StatusActive {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
