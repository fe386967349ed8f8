package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/skilltree/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "skilltree.db")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"http://localhost:3000"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SKILLTREE_ADDR", ":9090")
			_ = os.Setenv("SKILLTREE_DATABASE_DRIVER", "pgx")
			_ = os.Setenv("SKILLTREE_DATABASE_URL", "postgres://u:p@db:5432/skills?sslmode=disable")
			_ = os.Setenv("SKILLTREE_AUTO_MIGRATE", "false")
			_ = os.Setenv("SKILLTREE_CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
			_ = os.Setenv("SKILLTREE_RECENT_ASSESSMENTS_LIMIT", "10")
			_ = os.Setenv("SKILLTREE_SHUTDOWN_TIMEOUT", "5s")
			_ = os.Setenv("SKILLTREE_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatabaseDriver, convey.ShouldEqual, "pgx")
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://u:p@db:5432/skills?sslmode=disable")
				convey.So(cfg.AutoMigrate, convey.ShouldBeFalse)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example.com", "https://b.example.com"})
				convey.So(cfg.RecentAssessmentsLimit, convey.ShouldEqual, 10)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# service
addr: ":7070"
log_level: debug
database_driver: postgres
database_url: "postgres://localhost/skills"
cors_origins:
  - https://dash.example.com
default_scoring_mode: coverage
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLTREE_CONFIG", tmpFile)
			_ = os.Setenv("SKILLTREE_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DatabaseDriver, convey.ShouldEqual, "postgres")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://dash.example.com"})
				convey.So(cfg.DefaultScoringMode, convey.ShouldEqual, "coverage")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("SKILLTREE_CONFIG", "/nonexistent/skilltree.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			yamlContent := `
addr: ""
database_driver: sqlite
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLTREE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When metrics settings come from the environment", func() {
			_ = os.Setenv("SKILLTREE_METRICS_NAMESPACE", "acme")
			_ = os.Setenv("SKILLTREE_METRICS_SUBSYSTEM", "skills")
			_ = os.Setenv("SKILLTREE_METRICS_LABELS", "env=prod, region = eu ,broken")
			_ = os.Setenv("SKILLTREE_METRICS_BUCKETS", "1,5,25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then labels and buckets are parsed from their list forms", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "acme")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "skills")
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "prod", "region": "eu"})
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{1, 5, 25})
			})
		})

		convey.Convey("When metrics settings are not valid Prometheus names", func() {
			_ = os.Setenv("SKILLTREE_METRICS_NAMESPACE", "acme-corp")
			_ = os.Setenv("SKILLTREE_METRICS_BUCKETS", "10,5")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then each problem is reported", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_namespace must be a Prometheus name")
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_buckets must be strictly increasing")
			})
		})

		convey.Convey("When the scoring mode is invalid", func() {
			_ = os.Setenv("SKILLTREE_DEFAULT_SCORING_MODE", "median")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then the valid values are listed", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "average, team_readiness, coverage")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SKILLTREE_CONFIG",
		"SKILLTREE_ADDR",
		"SKILLTREE_LOG_LEVEL",
		"SKILLTREE_LOG_FORMAT",
		"SKILLTREE_DATABASE_DRIVER",
		"SKILLTREE_DATABASE_URL",
		"SKILLTREE_AUTO_MIGRATE",
		"SKILLTREE_CORS_ORIGINS",
		"SKILLTREE_RECENT_ASSESSMENTS_LIMIT",
		"SKILLTREE_DEFAULT_SCORING_MODE",
		"SKILLTREE_SHUTDOWN_TIMEOUT",
		"SKILLTREE_METRICS_NAMESPACE",
		"SKILLTREE_METRICS_SUBSYSTEM",
		"SKILLTREE_METRICS_LABELS",
		"SKILLTREE_METRICS_BUCKETS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "skilltree-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
