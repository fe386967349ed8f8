// Package repository is the SQL data access layer for employees, skills,
// scores and application settings.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	_ "github.com/lib/pq"              // registers the postgres driver
	"github.com/okian/skilltree/pkg/logger"
	"github.com/okian/skilltree/pkg/metrics"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

const (
	defaultMaxOpenConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
)

var sqlitePragmas = []string{ //nolint:gochecknoglobals // static pragma list
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
	"PRAGMA journal_mode=WAL",
}

// Store is a database/sql backed store. It is safe for concurrent use.
type Store struct {
	db              *sql.DB
	driver          string
	log             logger.Logger
	maxOpenConns    int
	connMaxLifetime time.Duration
}

// Open connects to dsn with the named driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	if !supported(driver) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	s, err := New(db, driver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("set pragma: %w", err)
			}
		}
	} else {
		db.SetMaxOpenConns(s.maxOpenConns)
		db.SetMaxIdleConns(s.maxOpenConns)
		db.SetConnMaxLifetime(s.connMaxLifetime)
	}

	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "database connected", logger.String("driver", driver))
	return s, nil
}

// New wraps an existing handle. driver selects the SQL dialect.
func New(db *sql.DB, driver string, opts ...Option) (*Store, error) {
	if !supported(driver) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	s := &Store{
		db:              db,
		driver:          driver,
		log:             logger.New(logger.WithOutput(io.Discard)),
		maxOpenConns:    defaultMaxOpenConns,
		connMaxLifetime: defaultConnMaxLifetime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Drivers lists the supported driver names.
func Drivers() []string {
	return []string{DriverPostgres, DriverPgx, DriverSQLite}
}

func supported(driver string) bool {
	for _, d := range Drivers() {
		if d == driver {
			return true
		}
	}
	return false
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) (err error) {
	defer s.observe("ping", time.Now(), &err)
	if err = s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ph returns the n-th (1-based) bind placeholder for the dialect.
func (s *Store) ph(n int) string {
	if s.driver == DriverSQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// in renders "IN (...)" for ids starting at placeholder start.
func (s *Store) in(start int, ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = s.ph(start + i)
		args[i] = id
	}
	return "IN (" + strings.Join(marks, ", ") + ")", args
}

func (s *Store) observe(op string, start time.Time, err *error) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && *err != nil {
		metrics.RecordStoreError(op)
	}
}
