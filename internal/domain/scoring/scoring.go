// Package scoring defines the policies that collapse a set of raw skill scores
// into a single team score.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Scoring constants.
const (
	// ProficientThreshold is the minimum raw score counted by coverage mode.
	ProficientThreshold = 70

	teamReadinessPercentile = 25
	percentScale            = 100
	roundingScale           = 10
)

// Mode names an aggregation policy.
type Mode string

const (
	// ModeAverage is the arithmetic mean.
	ModeAverage Mode = "average"
	// ModeTeamReadiness is the 25th percentile of the scores.
	ModeTeamReadiness Mode = "team_readiness"
	// ModeCoverage is the share of scores at or above ProficientThreshold, as a percentage.
	ModeCoverage Mode = "coverage"
)

// String returns the wire form of the mode.
func (m Mode) String() string { return string(m) }

// Modes lists every supported mode in display order.
func Modes() []Mode {
	return []Mode{ModeAverage, ModeTeamReadiness, ModeCoverage}
}

// ParseMode validates an external scoring mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidMode, s, joinModes(Modes()))
}

// NotAssessedHandling decides how members without a score take part in aggregation.
type NotAssessedHandling string

const (
	// Exclude drops unassessed members before aggregating.
	Exclude NotAssessedHandling = "exclude"
	// CountAsZero aggregates unassessed members as a score of 0.
	CountAsZero NotAssessedHandling = "count_as_zero"
)

// String returns the wire form of the handling.
func (h NotAssessedHandling) String() string { return string(h) }

// ParseNotAssessed validates an external not-assessed handling string.
func ParseNotAssessed(s string) (NotAssessedHandling, error) {
	switch h := NotAssessedHandling(strings.TrimSpace(s)); h {
	case Exclude, CountAsZero:
		return h, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of %s, %s", ErrInvalidNotAssessed, s, Exclude, CountAsZero)
	}
}

// ComputeScore aggregates scores under mode. The boolean is false when there
// is nothing to aggregate. Unknown modes are treated as ModeAverage.
func ComputeScore(scores []float64, mode Mode) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}

	var score float64
	switch mode {
	case ModeTeamReadiness:
		score = Percentile(scores, teamReadinessPercentile)
	case ModeCoverage:
		proficient := 0
		for _, s := range scores {
			if s >= ProficientThreshold {
				proficient++
			}
		}
		score = float64(proficient) / float64(len(scores)) * percentScale
	default:
		var sum float64
		for _, s := range scores {
			sum += s
		}
		score = sum / float64(len(scores))
	}

	return round1(score), true
}

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between the closest ranks. values is not modified.
// An empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	sort.Float64s(vals)
	if len(vals) == 1 {
		return vals[0]
	}

	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(percentScale, p))
	rank := p / percentScale * float64(len(vals)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return vals[lower]
	}
	return vals[lower] + (vals[upper]-vals[lower])*(rank-float64(lower))
}

// Level buckets a raw score into the dashboard distribution levels.
func Level(score float64) string {
	switch {
	case score >= 90:
		return LevelExpert
	case score >= ProficientThreshold:
		return LevelProficient
	case score >= 50:
		return LevelDeveloping
	default:
		return LevelBeginner
	}
}

// Distribution levels, highest first.
const (
	LevelExpert     = "Expert (90-100)"
	LevelProficient = "Proficient (70-89)"
	LevelDeveloping = "Developing (50-69)"
	LevelBeginner   = "Beginner (0-49)"
)

// Levels lists the distribution levels highest first.
func Levels() []string {
	return []string{LevelExpert, LevelProficient, LevelDeveloping, LevelBeginner}
}

func round1(v float64) float64 {
	return math.Round(v*roundingScale) / roundingScale
}

func joinModes(modes []Mode) string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
