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

// Well-known setting keys.
const (
	SettingNotAssessedHandling = "not_assessed_handling"
)

// Setting returns one setting by key.
func (s *Store) Setting(ctx context.Context, key string) (_ model.Setting, err error) {
	const op = "get_setting"
	defer s.observe(op, time.Now(), &err)

	row := s.db.QueryRowContext(ctx,
		`SELECT key, value, updated_by, updated_at FROM app_settings WHERE key = `+s.ph(1), key)
	st, err := scanSetting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Setting{}, fmt.Errorf("%s: setting %q: %w", op, key, ErrNotFound)
	}
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// Settings returns every setting ordered by key.
func (s *Store) Settings(ctx context.Context) (_ []model.Setting, err error) {
	const op = "list_settings"
	defer s.observe(op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, updated_by, updated_at FROM app_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.Setting
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// UpdateSetting replaces the value of an existing setting. Unknown keys are
// never created.
func (s *Store) UpdateSetting(ctx context.Context, key string, value json.RawMessage, by string) (_ model.Setting, err error) {
	const op = "update_setting"
	defer s.observe(op, time.Now(), &err)

	if !json.Valid(value) {
		return model.Setting{}, fmt.Errorf("%s: %w", op, ErrInvalidSettingValue)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE app_settings SET value = %s, updated_by = %s, updated_at = %s WHERE key = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4)),
		string(value), by, time.Now().UTC(), key)
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(op, res, fmt.Sprintf("setting %q", key)); err != nil {
		return model.Setting{}, err
	}
	return s.Setting(ctx, key)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSetting(r rowScanner) (model.Setting, error) {
	var (
		st    model.Setting
		value string
		by    sql.NullString
	)
	if err := r.Scan(&st.Key, &value, &by, &st.UpdatedAt); err != nil {
		return model.Setting{}, err
	}
	st.Value = json.RawMessage(value)
	st.UpdatedBy = nullString(by)
	return st, nil
}
