// Package hierarchy builds the org forest from the flat employee table and
// attaches per-skill aggregate scores to every node.
package hierarchy

import (
	"context"
	"fmt"

	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/internal/domain/scoring"
	"golang.org/x/sync/errgroup"
)

// Source supplies the raw rows the builder aggregates. Implementations must
// be safe for concurrent use.
type Source interface {
	FetchActiveEmployees(ctx context.Context) ([]model.Employee, error)
	FetchSkills(ctx context.Context, ids []int64) ([]model.Skill, error)
	FetchScores(ctx context.Context, skillIDs []int64) ([]model.ScoreObservation, error)
}

// Query describes one hierarchy request. The zero value asks for the whole
// forest, all skills, average scoring and unassessed members excluded.
type Query struct {
	ScoringMode    scoring.Mode
	SkillIDs       []int64
	RoleNames      []string
	RootEmployeeID *int64
	NotAssessed    scoring.NotAssessedHandling
}

func (q Query) mode() scoring.Mode {
	if q.ScoringMode == "" {
		return scoring.ModeAverage
	}
	return q.ScoringMode
}

func (q Query) notAssessed() scoring.NotAssessedHandling {
	if q.NotAssessed == "" {
		return scoring.Exclude
	}
	return q.NotAssessed
}

// Builder assembles hierarchy forests. It holds no per-request state.
type Builder struct {
	src Source
}

// New returns a Builder reading from src.
func New(src Source) *Builder {
	return &Builder{src: src}
}

// GetHierarchy returns the forest for q. An unknown RootEmployeeID yields an
// empty forest. Storage errors are returned as-is.
func (b *Builder) GetHierarchy(ctx context.Context, q Query) ([]*model.HierarchyNode, error) {
	snap, err := b.load(ctx, q)
	if err != nil {
		return nil, err
	}

	roots := snap.roots
	if q.RootEmployeeID != nil {
		if _, ok := snap.byID[*q.RootEmployeeID]; !ok {
			return []*model.HierarchyNode{}, nil
		}
		roots = []int64{*q.RootEmployeeID}
	}

	c := &construction{
		snap:  snap,
		mode:  q.mode(),
		na:    q.notAssessed(),
		roles: roleSet(q.RoleNames),
		path:  make(map[int64]bool),
	}
	forest := make([]*model.HierarchyNode, 0, len(roots))
	for _, id := range roots {
		node, _ := c.build(id)
		forest = append(forest, node)
	}
	return forest, nil
}

// snapshot is the per-call view of the source data.
type snapshot struct {
	employees []model.Employee
	byID      map[int64]*model.Employee
	children  map[int64][]int64
	roots     []int64
	skills    []model.Skill
	scores    map[int64]map[int64]float64 // employee -> skill -> score
	observed  []model.ScoreObservation
}

func (b *Builder) load(ctx context.Context, q Query) (*snapshot, error) {
	var (
		employees []model.Employee
		skills    []model.Skill
		scores    []model.ScoreObservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = b.src.FetchActiveEmployees(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		skills, err = b.src.FetchSkills(gctx, q.SkillIDs)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = b.src.FetchScores(gctx, q.SkillIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &snapshot{
		employees: employees,
		byID:      make(map[int64]*model.Employee, len(employees)),
		children:  make(map[int64][]int64),
		skills:    skills,
		scores:    make(map[int64]map[int64]float64),
		observed:  scores,
	}
	for i := range employees {
		e := &employees[i]
		snap.byID[e.ID] = e
	}
	for _, e := range employees {
		switch {
		case e.ManagerID == nil:
			snap.roots = append(snap.roots, e.ID)
		default:
			// Employees whose manager is inactive hang off a missing parent
			// and are reachable only through RootEmployeeID.
			snap.children[*e.ManagerID] = append(snap.children[*e.ManagerID], e.ID)
		}
	}
	for _, s := range scores {
		bySkill, ok := snap.scores[s.EmployeeID]
		if !ok {
			bySkill = make(map[int64]float64)
			snap.scores[s.EmployeeID] = bySkill
		}
		bySkill[s.SkillID] = s.Score
	}
	return snap, nil
}

type construction struct {
	snap  *snapshot
	mode  scoring.Mode
	na    scoring.NotAssessedHandling
	roles map[string]struct{}
	path  map[int64]bool
}

// build constructs the node for id and returns it with its descendant ids in
// pre-order. Children already on the current path are skipped so that a
// manager cycle terminates.
func (c *construction) build(id int64) (*model.HierarchyNode, []int64) {
	e := c.snap.byID[id]
	c.path[id] = true
	defer delete(c.path, id)

	node := &model.HierarchyNode{
		ID:         e.ID,
		Name:       e.FullName(),
		Title:      e.Title,
		Department: e.Department,
		Children:   []*model.HierarchyNode{},
	}

	var descendants []int64
	for _, childID := range c.snap.children[id] {
		if c.path[childID] {
			continue
		}
		child, childDesc := c.build(childID)
		node.Children = append(node.Children, child)
		descendants = append(descendants, childID)
		descendants = append(descendants, childDesc...)
	}

	node.DirectReportCount = len(node.Children)
	node.IsManager = node.DirectReportCount > 0
	node.TotalDescendantCount = len(descendants)
	node.SkillScores = c.aggregate(c.scoringIDs(id, descendants))
	return node, descendants
}

func (c *construction) scoringIDs(self int64, descendants []int64) []int64 {
	all := make([]int64, 0, len(descendants)+1)
	all = append(all, self)
	all = append(all, descendants...)
	if c.roles == nil {
		return all
	}
	return c.snap.filterRoles(all, c.roles)
}

func (c *construction) aggregate(ids []int64) []model.SkillScore {
	out := make([]model.SkillScore, 0, len(c.snap.skills))
	for _, sk := range c.snap.skills {
		values, assessed := c.snap.collect(ids, sk.ID, c.na)
		entry := model.SkillScore{
			SkillID:       sk.ID,
			SkillName:     sk.Name,
			AssessedCount: assessed,
			TotalCount:    len(ids),
		}
		if v, ok := scoring.ComputeScore(values, c.mode); ok {
			entry.Score = &v
		}
		out = append(out, entry)
	}
	return out
}

// collect gathers the aggregation input for one skill over ids and reports
// how many of them were actually assessed.
func (s *snapshot) collect(ids []int64, skillID int64, na scoring.NotAssessedHandling) ([]float64, int) {
	values := make([]float64, 0, len(ids))
	assessed := 0
	for _, id := range ids {
		v, ok := s.scores[id][skillID]
		switch {
		case ok:
			assessed++
			values = append(values, v)
		case na == scoring.CountAsZero:
			values = append(values, 0)
		}
	}
	return values, assessed
}

func (s *snapshot) filterRoles(ids []int64, roles map[string]struct{}) []int64 {
	out := ids[:0:0]
	for _, id := range ids {
		e := s.byID[id]
		if e.Department == nil {
			continue
		}
		if _, ok := roles[*e.Department]; ok {
			out = append(out, id)
		}
	}
	return out
}

func roleSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// String renders a query for logs.
func (q Query) String() string {
	root := "all"
	if q.RootEmployeeID != nil {
		root = fmt.Sprint(*q.RootEmployeeID)
	}
	return fmt.Sprintf("mode=%s skills=%v roles=%v root=%s not_assessed=%s",
		q.mode(), q.SkillIDs, q.RoleNames, root, q.notAssessed())
}
