package main

import (
	"fmt"
	"time"

	"github.com/okian/skilltree/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd(c *cli) *cobra.Command {
	cfg := seed.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty database with a synthetic organisation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := openStore(cmd, c.cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			if c.cfg.AutoMigrate {
				if err := st.Migrate(ctx); err != nil {
					return err
				}
			}

			stats, err := seed.Run(ctx, st, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d employees, %d skills, %d assessments in %s\n",
				stats.EmployeesInserted, stats.SkillsInserted, stats.ScoresRecorded, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Employees, "employees", cfg.Employees, "number of employees")
	f.IntVar(&cfg.Skills, "skills", cfg.Skills, "number of skills")
	f.IntVar(&cfg.Fanout, "fanout", cfg.Fanout, "direct reports per manager")
	f.Float64Var(&cfg.AssessedRatio, "assessed-ratio", cfg.AssessedRatio, "share of employee/skill pairs with a score")
	f.Float64Var(&cfg.HistoryRatio, "history-ratio", cfg.HistoryRatio, "share of scored pairs that also get a superseded assessment")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}
