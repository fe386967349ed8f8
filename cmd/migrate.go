package main

import (
	"fmt"

	"github.com/okian/skilltree/internal/adapters/repository"
	"github.com/okian/skilltree/internal/config"
	"github.com/okian/skilltree/pkg/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				files, err := repository.Migrations(c.cfg.DatabaseDriver)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}

			st, err := openStore(cmd, c.cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Migrate(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the embedded migration files for the configured driver and exit")
	return cmd
}

func openStore(cmd *cobra.Command, cfg *config.Config) (*repository.Store, error) {
	st, err := repository.Open(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL,
		repository.WithLogger(logger.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DatabaseDriver, err)
	}
	return st, nil
}
