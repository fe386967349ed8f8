package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
)

// latestScores keeps one row per employee/skill pair: the newest by
// assessment date, ties broken by row id.
const latestScores = `
	SELECT es.employee_id, es.skill_id, es.score, es.assessment_date
	FROM employee_skills es
	JOIN employees e ON e.id = es.employee_id
	JOIN skills s ON s.id = es.skill_id
	WHERE e.is_active = TRUE
	  AND s.is_archived = FALSE
	  AND NOT EXISTS (
		SELECT 1 FROM employee_skills newer
		WHERE newer.employee_id = es.employee_id
		  AND newer.skill_id = es.skill_id
		  AND (newer.assessment_date > es.assessment_date
		       OR (newer.assessment_date = es.assessment_date AND newer.id > es.id))
	  )`

// FetchScores returns the latest score of every active employee on every
// non-archived skill, restricted to skillIDs when non-empty.
func (s *Store) FetchScores(ctx context.Context, skillIDs []int64) (_ []model.ScoreObservation, err error) {
	const op = "fetch_scores"
	defer s.observe(op, time.Now(), &err)

	query := latestScores
	var args []any
	if len(skillIDs) > 0 {
		clause, inArgs := s.in(1, skillIDs)
		query += ` AND es.skill_id ` + clause
		args = inArgs
	}
	query += ` ORDER BY es.employee_id, es.skill_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.ScoreObservation
	for rows.Next() {
		var o model.ScoreObservation
		if err := rows.Scan(&o.EmployeeID, &o.SkillID, &o.Score, &o.AssessedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// RecentAssessments returns the newest limit assessments of active employees.
func (s *Store) RecentAssessments(ctx context.Context, limit int) (_ []model.Assessment, err error) {
	const op = "recent_assessments"
	defer s.observe(op, time.Now(), &err)

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT es.employee_id, e.first_name, e.last_name, es.skill_id, s.name, es.score, es.assessment_date
		FROM employee_skills es
		JOIN employees e ON e.id = es.employee_id
		JOIN skills s ON s.id = es.skill_id
		WHERE e.is_active = TRUE
		ORDER BY es.assessment_date DESC, es.id DESC
		LIMIT `+s.ph(1), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []model.Assessment{}
	for rows.Next() {
		var (
			a           model.Assessment
			first, last string
		)
		if err := rows.Scan(&a.EmployeeID, &first, &last, &a.SkillID, &a.SkillName, &a.Score, &a.AssessedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		a.EmployeeName = first + " " + last
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// RecordScore appends an assessment. A zero AssessedAt means now.
func (s *Store) RecordScore(ctx context.Context, o model.ScoreObservation) (_ int64, err error) {
	const op = "record_score"
	defer s.observe(op, time.Now(), &err)

	at := o.AssessedAt
	if at.IsZero() {
		at = time.Now()
	}
	var id int64
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO employee_skills (employee_id, skill_id, score, assessment_date)
		VALUES (%s, %s, %s, %s)
		RETURNING id`, s.ph(1), s.ph(2), s.ph(3), s.ph(4)),
		o.EmployeeID, o.SkillID, o.Score, at.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
