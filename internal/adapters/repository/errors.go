package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidLimit        = errors.New("invalid limit")
	ErrUnknownDriver       = errors.New("unknown database driver")
	ErrInvalidSettingValue = errors.New("setting value must be valid JSON")
)
