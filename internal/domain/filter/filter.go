// Package filter turns raw request parameters and the caller's identity into
// a validated hierarchy query.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/skilltree/internal/domain/hierarchy"
	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/internal/domain/scoring"
)

// Query parameter names.
const (
	ParamScoringMode = "scoring_mode"
	ParamSkills      = "skills"
	ParamRoles       = "roles"
	ParamManagerID   = "manager_id"
	ParamNotAssessed = "not_assessed"
)

// Params holds the raw, unvalidated filter values.
type Params struct {
	ScoringMode string
	Skills      string
	Roles       string
	ManagerID   string
	NotAssessed string
}

// FromValues reads Params from URL query values.
func FromValues(v url.Values) Params {
	return Params{
		ScoringMode: v.Get(ParamScoringMode),
		Skills:      v.Get(ParamSkills),
		Roles:       v.Get(ParamRoles),
		ManagerID:   v.Get(ParamManagerID),
		NotAssessed: v.Get(ParamNotAssessed),
	}
}

// FromViewState reads Params from a saved view.
func FromViewState(v model.ViewState) Params {
	p := Params{
		ScoringMode: v.ScoringMode,
		Roles:       strings.Join(v.Roles, ","),
		NotAssessed: v.NotAssessed,
	}
	skills := make([]string, 0, len(v.Skills))
	for _, id := range v.Skills {
		skills = append(skills, strconv.FormatInt(id, 10))
	}
	p.Skills = strings.Join(skills, ",")
	if v.ManagerID != nil {
		p.ManagerID = strconv.FormatInt(*v.ManagerID, 10)
	}
	return p
}

// HasFilters reports whether p narrows the default view.
func HasFilters(p Params) bool {
	return len(parseSkills(p.Skills)) > 0 ||
		len(splitList(p.Roles)) > 0 ||
		strings.TrimSpace(p.ManagerID) != ""
}

// Resolve validates p and applies the caller's permissions. Non-admin callers
// are always scoped to their own subtree, whatever manager_id says.
func Resolve(p Params, caller model.Caller, defaultNotAssessed scoring.NotAssessedHandling) (hierarchy.Query, error) {
	q, err := parse(p, defaultNotAssessed)
	if err != nil {
		return hierarchy.Query{}, err
	}
	if !caller.IsAdmin() {
		if caller.EmployeeID == nil {
			return hierarchy.Query{}, ErrNoEmployeeRecord
		}
		own := *caller.EmployeeID
		q.RootEmployeeID = &own
	}
	return q, nil
}

// Validate checks p without applying any caller scoping.
func Validate(p Params) error {
	_, err := parse(p, scoring.Exclude)
	return err
}

func parse(p Params, defaultNotAssessed scoring.NotAssessedHandling) (hierarchy.Query, error) {
	q := hierarchy.Query{
		ScoringMode: scoring.ModeAverage,
		SkillIDs:    parseSkills(p.Skills),
		RoleNames:   splitList(p.Roles),
		NotAssessed: defaultNotAssessed,
	}
	if q.NotAssessed == "" {
		q.NotAssessed = scoring.Exclude
	}

	if strings.TrimSpace(p.ScoringMode) != "" {
		mode, err := scoring.ParseMode(p.ScoringMode)
		if err != nil {
			return hierarchy.Query{}, err
		}
		q.ScoringMode = mode
	}

	if strings.TrimSpace(p.NotAssessed) != "" {
		na, err := scoring.ParseNotAssessed(p.NotAssessed)
		if err != nil {
			return hierarchy.Query{}, err
		}
		q.NotAssessed = na
	}

	if raw := strings.TrimSpace(p.ManagerID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return hierarchy.Query{}, fmt.Errorf("%w %q: must be an integer", ErrInvalidManagerID, p.ManagerID)
		}
		q.RootEmployeeID = &id
	}
	return q, nil
}

// parseSkills keeps positive integer ids in first-seen order.
func parseSkills(raw string) []int64 {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
