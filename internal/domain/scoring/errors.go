package scoring

import "errors"

// Sentinel kinds for scoring input errors.
var (
	ErrInvalidMode        = errors.New("invalid scoring_mode")
	ErrInvalidNotAssessed = errors.New("invalid not_assessed")
)
