package models

import "time"

// SiteSettings is the single-row site-wide configuration.
type SiteSettings struct {
	MaintenanceMode  bool
	RegistrationOpen bool
	MessagingEnabled bool
	UpdatedAt        time.Time
}

// DefaultSiteSettings returns the configuration used before an admin has
// changed anything.
func DefaultSiteSettings() *SiteSettings {
	return &SiteSettings{
		MaintenanceMode:  false,
		RegistrationOpen: true,
		MessagingEnabled: true,
	}
}
