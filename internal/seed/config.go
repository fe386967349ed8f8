package seed

import (
	"fmt"
	"time"
)

// Config controls the shape of a synthetic organisation.
type Config struct {
	Employees int // Number of employees, root included
	Skills    int // Number of skills
	Fanout    int // Direct reports per manager
	// AssessedRatio is the chance that an employee/skill pair has a score.
	AssessedRatio float64
	// HistoryRatio is the chance that a scored pair also gets an older,
	// superseded assessment.
	HistoryRatio float64
	Seed         uint64    // Random seed; equal seeds generate equal organisations
	Now          time.Time // Reference time for assessment dates
}

// DefaultConfig returns a small organisation suitable for local dashboards.
func DefaultConfig() Config {
	return Config{
		Employees:     50,
		Skills:        8,
		Fanout:        4,
		AssessedRatio: 0.7,
		HistoryRatio:  0.2,
		Seed:          1,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Employees < 1:
		return fmt.Errorf("%w: employees must be at least 1, got %d", ErrInvalidConfig, c.Employees)
	case c.Skills < 1:
		return fmt.Errorf("%w: skills must be at least 1, got %d", ErrInvalidConfig, c.Skills)
	case c.Fanout < 1:
		return fmt.Errorf("%w: fanout must be at least 1, got %d", ErrInvalidConfig, c.Fanout)
	case c.AssessedRatio < 0 || c.AssessedRatio > 1:
		return fmt.Errorf("%w: assessed ratio must be within [0,1], got %g", ErrInvalidConfig, c.AssessedRatio)
	case c.HistoryRatio < 0 || c.HistoryRatio > 1:
		return fmt.Errorf("%w: history ratio must be within [0,1], got %g", ErrInvalidConfig, c.HistoryRatio)
	}
	return nil
}

// Stats holds seeding statistics.
type Stats struct {
	EmployeesInserted int
	SkillsInserted    int
	ScoresRecorded    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
