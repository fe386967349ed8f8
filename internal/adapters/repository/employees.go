package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
)

// FetchActiveEmployees returns every active employee ordered by name.
func (s *Store) FetchActiveEmployees(ctx context.Context) (_ []model.Employee, err error) {
	const op = "fetch_employees"
	defer s.observe(op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, title, department, manager_id
		FROM employees
		WHERE is_active = TRUE
		ORDER BY first_name, last_name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var (
			e       model.Employee
			title   sql.NullString
			dept    sql.NullString
			manager sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &title, &dept, &manager); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		e.Title = nullString(title)
		e.Department = nullString(dept)
		if manager.Valid {
			id := manager.Int64
			e.ManagerID = &id
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// EmployeeIDByEmail resolves an active employee by email, case-insensitively.
func (s *Store) EmployeeIDByEmail(ctx context.Context, email string) (_ int64, err error) {
	const op = "employee_by_email"
	defer s.observe(op, time.Now(), &err)

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM employees WHERE is_active = TRUE AND LOWER(email) = LOWER(`+s.ph(1)+`) ORDER BY id LIMIT 1`,
		email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: employee %q: %w", op, email, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// InsertEmployee stores an active employee and returns its id.
func (s *Store) InsertEmployee(ctx context.Context, e model.Employee) (_ int64, err error) {
	const op = "insert_employee"
	defer s.observe(op, time.Now(), &err)

	var id int64
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO employees (first_name, last_name, email, title, department, manager_id, is_active)
		VALUES (%s, %s, %s, %s, %s, %s, TRUE)
		RETURNING id`, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6)),
		e.FirstName, e.LastName, e.Email, nullable(e.Title), nullable(e.Department), nullable(e.ManagerID),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// SetEmployeeActive toggles whether an employee takes part in reads.
func (s *Store) SetEmployeeActive(ctx context.Context, id int64, active bool) (err error) {
	const op = "set_employee_active"
	defer s.observe(op, time.Now(), &err)

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET is_active = `+s.ph(1)+` WHERE id = `+s.ph(2), active, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affected(op, res, fmt.Sprintf("employee %d", id))
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func affected(op string, res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s: %w", op, what, ErrNotFound)
	}
	return nil
}
