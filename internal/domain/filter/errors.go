package filter

import "errors"

// Resolver errors. ErrInvalidManagerID is a client input error;
// ErrNoEmployeeRecord means the caller may not see any subtree.
var (
	ErrInvalidManagerID = errors.New("invalid manager_id")
	ErrNoEmployeeRecord = errors.New("caller has no employee record")
)
