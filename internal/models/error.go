package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnavailable    = errors.New("service unavailable")

	// Domain-specific errors
	ErrDuplicateEmail      = errors.New("email already in use")
	ErrInvalidParticipants = errors.New("conversation participants are invalid")
	ErrNotParticipant      = errors.New("sender is not a conversation participant")
	ErrEmptyContent        = errors.New("message content is empty")

	// Account state errors
	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountInactive  = errors.New("account is inactive")
)
