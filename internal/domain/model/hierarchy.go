package model

// HierarchyNode is one employee in a hierarchy result together with the
// aggregated scores of the people it covers.
type HierarchyNode struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	Title                *string          `json:"title"`
	Department           *string          `json:"department"`
	IsManager            bool             `json:"isManager"`
	DirectReportCount    int              `json:"directReportCount"`
	TotalDescendantCount int              `json:"totalDescendantCount"`
	SkillScores          []SkillScore     `json:"skillScores"`
	Children             []*HierarchyNode `json:"children"`
}

// SkillScore is the aggregate for one skill at one node. Score is nil when
// there was nothing to aggregate.
type SkillScore struct {
	SkillID       int64    `json:"skillId"`
	SkillName     string   `json:"skillName"`
	Score         *float64 `json:"score"`
	AssessedCount int      `json:"assessedCount"`
	TotalCount    int      `json:"totalCount"`
}

// ScoreFor returns the entry for skillID, if present.
func (n *HierarchyNode) ScoreFor(skillID int64) (SkillScore, bool) {
	for _, s := range n.SkillScores {
		if s.SkillID == skillID {
			return s, true
		}
	}
	return SkillScore{}, false
}
