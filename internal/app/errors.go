package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrForbidden       = errors.New("admin access required")
	ErrInvalidSetting  = errors.New("invalid setting value")
	ErrMissingDatabase = errors.New("database driver and url are required")
	ErrNotOwner        = errors.New("only the owner may change a saved view")
	ErrInvalidView     = errors.New("invalid saved view")
)
