package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
)

// FetchSkills returns non-archived skills ordered by name, restricted to ids
// when ids is non-empty.
func (s *Store) FetchSkills(ctx context.Context, ids []int64) (_ []model.Skill, err error) {
	const op = "fetch_skills"
	defer s.observe(op, time.Now(), &err)

	query := `SELECT id, name, category FROM skills WHERE is_archived = FALSE`
	var args []any
	if len(ids) > 0 {
		clause, inArgs := s.in(1, ids)
		query += ` AND id ` + clause
		args = inArgs
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.Skill
	for rows.Next() {
		var sk model.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// InsertSkill adds a skill to the catalog and returns its id.
func (s *Store) InsertSkill(ctx context.Context, sk model.Skill) (_ int64, err error) {
	const op = "insert_skill"
	defer s.observe(op, time.Now(), &err)

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO skills (name, category) VALUES (`+s.ph(1)+`, `+s.ph(2)+`) RETURNING id`,
		sk.Name, sk.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ArchiveSkill hides a skill from every read.
func (s *Store) ArchiveSkill(ctx context.Context, id int64) (err error) {
	const op = "archive_skill"
	defer s.observe(op, time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `UPDATE skills SET is_archived = TRUE WHERE id = `+s.ph(1), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res, fmt.Sprintf("skill %d", id))
}
