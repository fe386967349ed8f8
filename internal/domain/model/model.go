// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"time"
)

// Employee is one row of the flat org table. ManagerID is nil for roots.
type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Title      *string
	Department *string
	ManagerID  *int64
}

// FullName joins first and last name the way nodes display it.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Skill is an entry of the skills catalog.
type Skill struct {
	ID       int64
	Name     string
	Category string
}

// ScoreObservation is the latest recorded score of one employee on one skill.
type ScoreObservation struct {
	EmployeeID int64
	SkillID    int64
	Score      float64 // 0..100
	AssessedAt time.Time
}

// Assessment is a score observation joined with display names.
type Assessment struct {
	EmployeeID   int64     `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	SkillID      int64     `json:"skillId"`
	SkillName    string    `json:"skillName"`
	Score        float64   `json:"score"`
	AssessedAt   time.Time `json:"assessmentDate"`
}

// Setting is a stored application setting. Value holds raw JSON.
type Setting struct {
	Key       string          `json:"-"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy *string         `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ViewState is a stored set of dashboard filters. Its fields mirror the
// hierarchy query parameters.
type ViewState struct {
	ScoringMode string   `json:"scoringMode,omitempty"`
	Skills      []int64  `json:"skills"`
	Roles       []string `json:"roles"`
	ManagerID   *int64   `json:"managerId"`
	NotAssessed string   `json:"notAssessed,omitempty"`
}

// SavedView is a named ViewState owned by one user and optionally shared
// with everyone.
type SavedView struct {
	ID          int64     `json:"id"`
	OwnerEmail  string    `json:"user_email"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsShared    bool      `json:"is_shared"`
	State       ViewState `json:"view_state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ViewPatch holds the fields of a saved view update. Nil fields are left
// unchanged.
type ViewPatch struct {
	Name        *string
	Description *string
	IsShared    *bool
	State       *ViewState
}

// ManagerOption is an active employee offered as a manager filter choice.
type ManagerOption struct {
	ID         int64   `json:"id"`
	FullName   string  `json:"fullName"`
	Title      *string `json:"title"`
	Department *string `json:"department"`
}
