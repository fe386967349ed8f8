package main

import (
	"context"
	"fmt"
	"os"

	service "github.com/okian/skilltree/internal/app"
	"github.com/okian/skilltree/internal/config"
	"github.com/okian/skilltree/pkg/logger"
	"github.com/okian/skilltree/pkg/metrics"
	"github.com/spf13/cobra"
)

// cli carries state shared by every subcommand.
type cli struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "skilltree",
		Short: "Org-hierarchy skill dashboard service and tools",
		Long: `skilltree aggregates employee skill assessments up the reporting
hierarchy and serves the results over HTTP.

Configuration is layered: defaults, then the YAML file named by
--config or SKILLTREE_CONFIG, then SKILLTREE_* environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), c.cfg)
		},
	}
	cmd.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")

	cmd.AddCommand(newServeCmd(c))
	cmd.AddCommand(newMigrateCmd(c))
	cmd.AddCommand(newSeedCmd(c))
	cmd.AddCommand(newHierarchyCmd(c))
	return cmd
}

// setup loads configuration and initializes logging and metrics before any
// subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, c.configFile); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
	)
	return nil
}

// newService builds a service that opens its own store from cfg.
func newService(cfg *config.Config) *service.Service {
	return service.New(
		service.WithLogger(logger.Get()),
		service.WithDatabase(cfg.DatabaseDriver, cfg.DatabaseURL),
		service.WithAutoMigrate(cfg.AutoMigrate),
		service.WithRecentAssessmentsLimit(cfg.RecentAssessmentsLimit),
	)
}
