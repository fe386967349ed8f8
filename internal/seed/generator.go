// Package seed generates synthetic organisations and writes them to a store.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/skilltree/internal/domain/model"
)

// Score distribution buckets, as [min, width) on the 0-100 scale.
var scoreBands = [][2]float64{
	{30, 40}, // average performers, most common
	{70, 20}, // high performers
	{1, 29},  // low performers
	{90, 10}, // experts, rare
	{1, 9},   // very low, rare
	{60, 20}, // mid-high
	{20, 20}, // mid-low
	{1, 99},  // anywhere
}

var (
	firstNames  = []string{"Ada", "Ben", "Chloe", "Dmitri", "Esi", "Farah", "Goran", "Hana", "Ivan", "Jun", "Kofi", "Lena", "Mateo", "Nia", "Omar", "Priya"}
	lastNames   = []string{"Okafor", "Lindqvist", "Tanaka", "Moreau", "Silva", "Kowalski", "Haddad", "Nguyen", "Fischer", "Mensah", "Rossi", "Patel"}
	departments = []string{"Engineering", "Product", "Design", "Sales", "Operations"}
	skillNames  = []string{"Go", "SQL", "Kubernetes", "System Design", "Testing", "Communication", "Mentoring", "Negotiation", "Data Analysis", "Security", "Observability", "Planning"}
	categories  = []string{"Technical", "Technical", "Technical", "Technical", "Technical", "Interpersonal", "Leadership", "Interpersonal", "Technical", "Technical", "Technical", "Leadership"}
	titles      = []string{"Chief Executive", "Vice President", "Director", "Manager", "Senior Engineer", "Engineer"}
)

const (
	maxAssessmentAgeDays = 365
	hoursPerDay          = 24
)

// Org is a generated organisation. Employee ids and manager ids are
// positions in Employees plus one, and are remapped when written.
type Org struct {
	Employees []model.Employee
	Skills    []model.Skill
	Scores    []model.ScoreObservation
}

// Generate builds an organisation laid out breadth first: employee i reports
// to employee (i-1)/Fanout, so every manager precedes its reports.
func Generate(cfg Config) (Org, error) {
	if err := cfg.Validate(); err != nil {
		return Org{}, err
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	org := Org{
		Employees: make([]model.Employee, cfg.Employees),
		Skills:    make([]model.Skill, cfg.Skills),
	}
	for i := range org.Skills {
		name := skillNames[i%len(skillNames)]
		if i >= len(skillNames) {
			name = fmt.Sprintf("%s %d", name, i/len(skillNames)+1)
		}
		org.Skills[i] = model.Skill{ID: int64(i + 1), Name: name, Category: categories[i%len(categories)]}
	}

	for i := range org.Employees {
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		e := model.Employee{
			ID:        int64(i + 1),
			FirstName: first,
			LastName:  last,
			Email:     email(first, last),
		}
		title := titles[min(depth(i, cfg.Fanout), len(titles)-1)]
		e.Title = &title
		if i > 0 {
			manager := int64((i-1)/cfg.Fanout + 1)
			e.ManagerID = &manager
			// Leave a few departments unset so role filters see null values.
			if rng.IntN(20) > 0 {
				dept := departments[rng.IntN(len(departments))]
				e.Department = &dept
			}
		}
		org.Employees[i] = e
	}

	for _, e := range org.Employees {
		for _, sk := range org.Skills {
			if rng.Float64() >= cfg.AssessedRatio {
				continue
			}
			at := now.Add(-time.Duration(rng.IntN(maxAssessmentAgeDays/2)) * hoursPerDay * time.Hour)
			if rng.Float64() < cfg.HistoryRatio {
				older := at.Add(-time.Duration(rng.IntN(maxAssessmentAgeDays/2)+1) * hoursPerDay * time.Hour)
				org.Scores = append(org.Scores, model.ScoreObservation{
					EmployeeID: e.ID, SkillID: sk.ID, Score: score(rng), AssessedAt: older,
				})
			}
			org.Scores = append(org.Scores, model.ScoreObservation{
				EmployeeID: e.ID, SkillID: sk.ID, Score: score(rng), AssessedAt: at,
			})
		}
	}
	return org, nil
}

// depth returns the level of position i in a complete fanout-ary tree.
func depth(i, fanout int) int {
	d := 0
	for i > 0 {
		i = (i - 1) / fanout
		d++
	}
	return d
}

func score(rng *rand.Rand) float64 {
	band := scoreBands[rng.IntN(len(scoreBands))]
	return math.Round((band[0]+rng.Float64()*band[1])*10) / 10
}

// email builds a unique address. The UUID suffix keeps reruns from
// colliding on the unique email index.
func email(first, last string) string {
	return fmt.Sprintf("%s.%s.%s@example.com",
		strings.ToLower(first), strings.ToLower(last), uuid.NewString()[:8])
}
