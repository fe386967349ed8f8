package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
)

const viewColumns = `id, user_email, name, description, is_shared, view_state, created_at, updated_at`

// Views returns the views owned by email plus every shared view, newest
// first.
func (s *Store) Views(ctx context.Context, email string) (_ []model.SavedView, err error) {
	const op = "list_views"
	defer s.observe(op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+viewColumns+`
		FROM saved_views
		WHERE LOWER(user_email) = LOWER(`+s.ph(1)+`) OR is_shared = TRUE
		ORDER BY created_at DESC, id DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []model.SavedView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// View returns one saved view by id.
func (s *Store) View(ctx context.Context, id int64) (_ model.SavedView, err error) {
	const op = "get_view"
	defer s.observe(op, time.Now(), &err)

	row := s.db.QueryRowContext(ctx, `SELECT `+viewColumns+` FROM saved_views WHERE id = `+s.ph(1), id)
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedView{}, fmt.Errorf("%s: view %d: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return model.SavedView{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// CreateView stores v and returns it with its id and timestamps.
func (s *Store) CreateView(ctx context.Context, v model.SavedView) (_ model.SavedView, err error) {
	const op = "create_view"
	defer s.observe(op, time.Now(), &err)

	state, err := json.Marshal(v.State)
	if err != nil {
		return model.SavedView{}, fmt.Errorf("%s: encode state: %w", op, err)
	}
	now := time.Now().UTC()

	var id int64
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO saved_views (user_email, name, description, is_shared, view_state, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s)
		RETURNING id`, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7)),
		v.OwnerEmail, v.Name, nullable(v.Description), v.IsShared, string(state), now, now,
	).Scan(&id)
	if err != nil {
		return model.SavedView{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.View(ctx, id)
}

// UpdateView applies the non-nil fields of p to view id.
func (s *Store) UpdateView(ctx context.Context, id int64, p model.ViewPatch) (_ model.SavedView, err error) {
	const op = "update_view"
	defer s.observe(op, time.Now(), &err)

	var state any
	if p.State != nil {
		raw, err := json.Marshal(*p.State)
		if err != nil {
			return model.SavedView{}, fmt.Errorf("%s: encode state: %w", op, err)
		}
		state = string(raw)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE saved_views
		SET name = COALESCE(%s, name),
		    description = COALESCE(%s, description),
		    is_shared = COALESCE(%s, is_shared),
		    view_state = COALESCE(%s, view_state),
		    updated_at = %s
		WHERE id = %s`, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6)),
		nullable(p.Name), nullable(p.Description), nullable(p.IsShared), state, time.Now().UTC(), id)
	if err != nil {
		return model.SavedView{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(op, res, fmt.Sprintf("view %d", id)); err != nil {
		return model.SavedView{}, err
	}
	return s.View(ctx, id)
}

// DeleteView removes view id.
func (s *Store) DeleteView(ctx context.Context, id int64) (err error) {
	const op = "delete_view"
	defer s.observe(op, time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_views WHERE id = `+s.ph(1), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res, fmt.Sprintf("view %d", id))
}

func scanView(r rowScanner) (model.SavedView, error) {
	var (
		v     model.SavedView
		desc  sql.NullString
		state string
	)
	if err := r.Scan(&v.ID, &v.OwnerEmail, &v.Name, &desc, &v.IsShared, &state, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return model.SavedView{}, err
	}
	if err := json.Unmarshal([]byte(state), &v.State); err != nil {
		return model.SavedView{}, fmt.Errorf("decode view %d state: %w", v.ID, err)
	}
	v.Description = nullString(desc)
	return v, nil
}
