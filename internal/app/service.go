// Package service composes the store, the hierarchy builder and the query
// resolver into the operations exposed by the HTTP API and the CLI.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/skilltree/internal/adapters/repository"
	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/internal/domain/hierarchy"
	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/internal/domain/scoring"
	"github.com/okian/skilltree/pkg/logger"
	"github.com/okian/skilltree/pkg/metrics"
)

const defaultRecentLimit = 5

// Store is the persistence the service depends on.
type Store interface {
	hierarchy.Source
	EmployeeIDByEmail(ctx context.Context, email string) (int64, error)
	Setting(ctx context.Context, key string) (model.Setting, error)
	Settings(ctx context.Context) ([]model.Setting, error)
	UpdateSetting(ctx context.Context, key string, value json.RawMessage, by string) (model.Setting, error)
	RecentAssessments(ctx context.Context, limit int) ([]model.Assessment, error)
	Views(ctx context.Context, email string) ([]model.SavedView, error)
	View(ctx context.Context, id int64) (model.SavedView, error)
	CreateView(ctx context.Context, v model.SavedView) (model.SavedView, error)
	UpdateView(ctx context.Context, id int64, p model.ViewPatch) (model.SavedView, error)
	DeleteView(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Service implements the API dependencies for the skills dashboard.
type Service struct {
	mu sync.RWMutex

	store   Store
	builder *hierarchy.Builder
	owned   *repository.Store

	driver      string
	url         string
	autoMigrate bool
	recentLimit int

	started bool
	logger  logger.Logger
}

// Summary is the dashboard overview for one request.
type Summary struct {
	Overall           hierarchy.Stats    `json:"overall"`
	Filtered          hierarchy.Stats    `json:"filtered"`
	HasFilters        bool               `json:"hasFilters"`
	ScoreDistribution []hierarchy.Bucket `json:"scoreDistribution"`
	RecentAssessments []model.Assessment `json:"recentAssessments"`
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{recentLimit: defaultRecentLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store when none was injected and readies the builder.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		if s.driver == "" || s.url == "" {
			return ErrMissingDatabase
		}
		st, err := repository.Open(ctx, s.driver, s.url, repository.WithLogger(s.logger.Named("store")))
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		if s.autoMigrate {
			if err := st.Migrate(ctx); err != nil {
				_ = st.Close()
				return fmt.Errorf("start: %w", err)
			}
		}
		s.owned = st
		s.store = st
	}

	s.builder = hierarchy.New(s.store)
	s.started = true
	s.logger.Info(ctx, "skilltree service started",
		logger.String("driver", s.driver),
		logger.Bool("auto_migrate", s.autoMigrate),
		logger.Int("recent_limit", s.recentLimit),
	)
	return nil
}

// Stop releases the store if Start opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.owned != nil {
		if err := s.owned.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
		s.owned = nil
		s.store = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "skilltree service stopped")
}

// GetStats reports lifecycle state.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"started":      s.started,
		"driver":       s.driver,
		"owns_store":   s.owned != nil,
		"recent_limit": s.recentLimit,
	}
}

func (s *Service) ready() (Store, *hierarchy.Builder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.builder, nil
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	st, _, err := s.ready()
	if err != nil {
		return err
	}
	return st.Ping(ctx)
}

// ResolveCaller maps an authenticated identity to a Caller. An email that
// matches no active employee yields a caller without EmployeeID.
func (s *Service) ResolveCaller(ctx context.Context, email, role string) (model.Caller, error) {
	st, _, err := s.ready()
	if err != nil {
		return model.Caller{}, err
	}
	caller := model.Caller{Email: email, Role: role}
	if caller.Role == "" {
		caller.Role = model.RoleUser
	}
	id, err := st.EmployeeIDByEmail(ctx, email)
	switch {
	case err == nil:
		caller.EmployeeID = &id
	case errors.Is(err, repository.ErrNotFound):
	default:
		return model.Caller{}, fmt.Errorf("resolve caller: %w", err)
	}
	return caller, nil
}

type notAssessedSetting struct {
	Mode string `json:"mode"`
}

// DefaultNotAssessed reads the organisation-wide not-assessed handling.
// Missing or malformed settings fall back to exclude.
func (s *Service) DefaultNotAssessed(ctx context.Context) scoring.NotAssessedHandling {
	st, _, err := s.ready()
	if err != nil {
		return scoring.Exclude
	}
	setting, err := st.Setting(ctx, repository.SettingNotAssessedHandling)
	if err != nil {
		s.logger.Warn(ctx, "not_assessed_handling unavailable, using exclude", logger.Error(err))
		return scoring.Exclude
	}
	var v notAssessedSetting
	if err := json.Unmarshal(setting.Value, &v); err != nil {
		s.logger.Warn(ctx, "not_assessed_handling is not valid JSON, using exclude", logger.Error(err))
		return scoring.Exclude
	}
	h, err := scoring.ParseNotAssessed(v.Mode)
	if err != nil {
		s.logger.Warn(ctx, "not_assessed_handling has an unknown mode, using exclude", logger.Error(err))
		return scoring.Exclude
	}
	return h
}

// Hierarchy resolves p for caller and builds the forest.
func (s *Service) Hierarchy(ctx context.Context, p filter.Params, caller model.Caller) ([]*model.HierarchyNode, error) {
	_, b, err := s.ready()
	if err != nil {
		return nil, err
	}
	q, err := filter.Resolve(p, caller, s.DefaultNotAssessed(ctx))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	forest, err := b.GetHierarchy(ctx, q)
	s.observe(ctx, "hierarchy", q, start, err)
	if err != nil {
		return nil, fmt.Errorf("get hierarchy: %w", err)
	}

	nodes := len(hierarchy.Flatten(forest))
	metrics.RecordHierarchyNodes(nodes)
	s.logger.Debug(ctx, "hierarchy built",
		logger.String("query", q.String()),
		logger.Int("roots", len(forest)),
		logger.Int("nodes", nodes),
		logger.Duration("took", time.Since(start)))
	return forest, nil
}

// Summary computes the dashboard overview. Overall uses only the caller's
// scope and scoring options; Filtered also applies skills, roles and
// manager_id. Recent assessments are only listed for admins.
func (s *Service) Summary(ctx context.Context, p filter.Params, caller model.Caller) (Summary, error) {
	st, b, err := s.ready()
	if err != nil {
		return Summary{}, err
	}
	na := s.DefaultNotAssessed(ctx)

	filtered, err := filter.Resolve(p, caller, na)
	if err != nil {
		return Summary{}, err
	}
	overall, err := filter.Resolve(filter.Params{ScoringMode: p.ScoringMode, NotAssessed: p.NotAssessed}, caller, na)
	if err != nil {
		return Summary{}, err
	}

	start := time.Now()
	out := Summary{HasFilters: filter.HasFilters(p), RecentAssessments: []model.Assessment{}}
	if out.Overall, err = b.Summarize(ctx, overall); err == nil {
		out.Filtered, err = b.Summarize(ctx, filtered)
	}
	if err == nil && caller.IsAdmin() {
		out.RecentAssessments, err = st.RecentAssessments(ctx, s.recentLimit)
	}
	s.observe(ctx, "summary", filtered, start, err)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	out.ScoreDistribution = out.Filtered.Distribution
	return out, nil
}

// Settings lists every application setting.
func (s *Service) Settings(ctx context.Context) ([]model.Setting, error) {
	st, _, err := s.ready()
	if err != nil {
		return nil, err
	}
	return st.Settings(ctx)
}

// UpdateSetting replaces an existing setting. Only admins may do so, and
// known keys are validated before they are stored.
func (s *Service) UpdateSetting(ctx context.Context, caller model.Caller, key string, value json.RawMessage) (model.Setting, error) {
	st, _, err := s.ready()
	if err != nil {
		return model.Setting{}, err
	}
	if !caller.IsAdmin() {
		return model.Setting{}, ErrForbidden
	}
	if key == repository.SettingNotAssessedHandling {
		var v notAssessedSetting
		if err := json.Unmarshal(value, &v); err != nil {
			return model.Setting{}, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
		}
		if _, err := scoring.ParseNotAssessed(v.Mode); err != nil {
			return model.Setting{}, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
		}
	}

	setting, err := st.UpdateSetting(ctx, key, value, caller.Email)
	if err != nil {
		return model.Setting{}, err
	}
	metrics.RecordSettingUpdate(key)
	s.logger.Info(ctx, "setting updated",
		logger.String("key", key),
		logger.String("by", caller.Email))
	return setting, nil
}

func (s *Service) observe(ctx context.Context, op string, q hierarchy.Query, start time.Time, err error) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	mode := string(q.ScoringMode)
	if err != nil {
		metrics.RecordHierarchyBuild(op, mode, "error")
		metrics.RecordErrorByComponent(op, "storage")
		metrics.RecordErrorLatency(op, "storage", elapsed)
		s.logger.Error(ctx, op+" failed", logger.String("query", q.String()), logger.Error(err))
		return
	}
	metrics.RecordHierarchyBuild(op, mode, "ok")
	metrics.RecordHierarchyBuildLatency(op, elapsed)
}
