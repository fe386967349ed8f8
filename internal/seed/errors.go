package seed

import "errors"

// Sentinel kinds for seeding errors.
var (
	ErrInvalidConfig = errors.New("invalid seed config")
)
