package hierarchy_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
)

type fakeSource struct {
	employees []model.Employee
	skills    []model.Skill
	scores    []model.ScoreObservation

	employeesErr error
	skillsErr    error
	scoresErr    error

	calls atomic.Int32
}

func (f *fakeSource) FetchActiveEmployees(context.Context) ([]model.Employee, error) {
	f.calls.Add(1)
	if f.employeesErr != nil {
		return nil, f.employeesErr
	}
	return slices.Clone(f.employees), nil
}

func (f *fakeSource) FetchSkills(_ context.Context, ids []int64) ([]model.Skill, error) {
	f.calls.Add(1)
	if f.skillsErr != nil {
		return nil, f.skillsErr
	}
	var out []model.Skill
	for _, s := range f.skills {
		if len(ids) == 0 || slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) FetchScores(_ context.Context, skillIDs []int64) ([]model.ScoreObservation, error) {
	f.calls.Add(1)
	if f.scoresErr != nil {
		return nil, f.scoresErr
	}
	var out []model.ScoreObservation
	for _, s := range f.scores {
		if len(skillIDs) == 0 || slices.Contains(skillIDs, s.SkillID) {
			out = append(out, s)
		}
	}
	return out, nil
}

var errBarrierTimeout = errors.New("fetches did not overlap")

// barrierSource holds every fetch until all three are in flight. A builder
// that fetches one after another times out instead.
type barrierSource struct {
	*fakeSource

	timeout  time.Duration
	arrived  atomic.Int32
	maxDepth atomic.Int32
	once     sync.Once
	all      chan struct{}
}

func newBarrierSource(src *fakeSource, timeout time.Duration) *barrierSource {
	return &barrierSource{fakeSource: src, timeout: timeout, all: make(chan struct{})}
}

func (b *barrierSource) wait(ctx context.Context) error {
	n := b.arrived.Add(1)
	for {
		cur := b.maxDepth.Load()
		if n <= cur || b.maxDepth.CompareAndSwap(cur, n) {
			break
		}
	}
	if n == 3 {
		b.once.Do(func() { close(b.all) })
	}
	select {
	case <-b.all:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.timeout):
		return errBarrierTimeout
	}
}

func (b *barrierSource) FetchActiveEmployees(ctx context.Context) ([]model.Employee, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.fakeSource.FetchActiveEmployees(ctx)
}

func (b *barrierSource) FetchSkills(ctx context.Context, ids []int64) ([]model.Skill, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.fakeSource.FetchSkills(ctx, ids)
}

func (b *barrierSource) FetchScores(ctx context.Context, skillIDs []int64) ([]model.ScoreObservation, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.fakeSource.FetchScores(ctx, skillIDs)
}

func emp(id int64, first string, manager *int64, dept *string) model.Employee {
	return model.Employee{
		ID:         id,
		FirstName:  first,
		LastName:   "Test",
		Email:      first + "@example.com",
		Department: dept,
		ManagerID:  manager,
	}
}

func ptr[T any](v T) *T { return &v }

func score(employee, skill int64, v float64) model.ScoreObservation {
	return model.ScoreObservation{EmployeeID: employee, SkillID: skill, Score: v}
}
