package model

import "strings"

// Caller roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Caller identifies who issued a request. EmployeeID is nil when the email
// does not belong to an active employee.
type Caller struct {
	Email      string
	Role       string
	EmployeeID *int64
}

// IsAdmin reports whether the caller may see the whole organisation.
func (c Caller) IsAdmin() bool {
	return strings.EqualFold(c.Role, RoleAdmin)
}
