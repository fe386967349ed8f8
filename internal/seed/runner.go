package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/pkg/logger"
)

// Writer is the store surface the seeder writes through.
type Writer interface {
	InsertSkill(ctx context.Context, sk model.Skill) (int64, error)
	InsertEmployee(ctx context.Context, e model.Employee) (int64, error)
	RecordScore(ctx context.Context, o model.ScoreObservation) (int64, error)
}

// Run generates an organisation from cfg and writes it through w.
func Run(ctx context.Context, w Writer, cfg Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	org, err := Generate(cfg)
	if err != nil {
		return stats, err
	}
	log := logger.Get().Named("seed")
	log.Info(ctx, "seeding organisation",
		logger.Int("employees", len(org.Employees)),
		logger.Int("skills", len(org.Skills)),
		logger.Int("scores", len(org.Scores)),
		logger.Int("fanout", cfg.Fanout))

	skillIDs := make(map[int64]int64, len(org.Skills))
	for _, sk := range org.Skills {
		id, err := w.InsertSkill(ctx, sk)
		if err != nil {
			return stats, fmt.Errorf("seed skill %q: %w", sk.Name, err)
		}
		skillIDs[sk.ID] = id
		stats.SkillsInserted++
	}

	employeeIDs := make(map[int64]int64, len(org.Employees))
	for _, e := range org.Employees {
		if e.ManagerID != nil {
			manager := employeeIDs[*e.ManagerID]
			e.ManagerID = &manager
		}
		id, err := w.InsertEmployee(ctx, e)
		if err != nil {
			return stats, fmt.Errorf("seed employee %q: %w", e.Email, err)
		}
		employeeIDs[e.ID] = id
		stats.EmployeesInserted++
	}

	for i, o := range org.Scores {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("seed cancelled after %d scores: %w", i, err)
		}
		o.EmployeeID = employeeIDs[o.EmployeeID]
		o.SkillID = skillIDs[o.SkillID]
		if _, err := w.RecordScore(ctx, o); err != nil {
			return stats, fmt.Errorf("seed score %d/%d: %w", o.EmployeeID, o.SkillID, err)
		}
		stats.ScoresRecorded++
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "seeding complete",
		logger.Int("employees", stats.EmployeesInserted),
		logger.Int("skills", stats.SkillsInserted),
		logger.Int("scores", stats.ScoresRecorded),
		logger.Duration("took", stats.Duration))
	return stats, nil
}
