package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Admin actions
const (
	AdminActionRoleChange   = "role_change"
	AdminActionStatusChange = "status_change"
	AdminActionUserDelete   = "user_delete"
	AdminActionSettings     = "settings_change"
)

// Target types
const (
	AdminTargetUser     = "user"
	AdminTargetSettings = "site_settings"
)

// AdminLog is an append-only audit record of a privileged action. No update
// or delete operation is ever exposed for this entity.
type AdminLog struct {
	ID         string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Details    AdminLogDetails
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}

// AdminLogDetails holds free-form context such as before/after values.
type AdminLogDetails map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (d *AdminLogDetails) Scan(value interface{}) error {
	if value == nil {
		*d = make(AdminLogDetails)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*d = AdminLogDetails(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (d AdminLogDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}
