package hierarchy

import (
	"context"

	"github.com/okian/skilltree/internal/domain/scoring"
)

// Stats summarises the employees and scores in a query's scope.
type Stats struct {
	TotalEmployees   int      `json:"totalEmployees"`
	TotalSkills      int      `json:"totalSkills"`
	TotalAssessments int      `json:"totalAssessments"`
	Score            *float64 `json:"score"`
	Distribution     []Bucket `json:"-"`
}

// Bucket counts assessments falling into one scoring level.
type Bucket struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Summarize computes Stats for q. The scope is every active employee, or the
// subtree at RootEmployeeID when set, narrowed by RoleNames. Score applies the
// query's scoring mode and not-assessed handling to every in-scope
// employee/skill pair.
func (b *Builder) Summarize(ctx context.Context, q Query) (Stats, error) {
	snap, err := b.load(ctx, q)
	if err != nil {
		return Stats{}, err
	}

	scope := snap.scope(q.RootEmployeeID)
	if roles := roleSet(q.RoleNames); roles != nil {
		scope = snap.filterRoles(scope, roles)
	}

	counts := make(map[string]int)
	var values []float64
	assessments := 0
	for _, sk := range snap.skills {
		vals, assessed := snap.collect(scope, sk.ID, q.notAssessed())
		values = append(values, vals...)
		assessments += assessed
	}
	for _, id := range scope {
		for _, sk := range snap.skills {
			if v, ok := snap.scores[id][sk.ID]; ok {
				counts[scoring.Level(v)]++
			}
		}
	}

	stats := Stats{
		TotalEmployees:   len(scope),
		TotalSkills:      len(snap.skills),
		TotalAssessments: assessments,
	}
	if v, ok := scoring.ComputeScore(values, q.mode()); ok {
		stats.Score = &v
	}
	for _, level := range scoring.Levels() {
		stats.Distribution = append(stats.Distribution, Bucket{Level: level, Count: counts[level]})
	}
	return stats, nil
}

// scope lists the employees under root, root included, or every employee
// when root is nil.
func (s *snapshot) scope(root *int64) []int64 {
	if root == nil {
		ids := make([]int64, 0, len(s.employees))
		for _, e := range s.employees {
			ids = append(ids, e.ID)
		}
		return ids
	}
	if _, ok := s.byID[*root]; !ok {
		return nil
	}

	seen := map[int64]bool{*root: true}
	ids := []int64{*root}
	for i := 0; i < len(ids); i++ {
		for _, child := range s.children[ids[i]] {
			if seen[child] {
				continue
			}
			seen[child] = true
			ids = append(ids, child)
		}
	}
	return ids
}
