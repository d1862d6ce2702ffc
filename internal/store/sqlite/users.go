package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/store"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO users (email, name, role, password_hash, created_at)
	           VALUES (?, ?, ?, ?, ?) RETURNING id`
	err := s.db.QueryRowContext(ctx, q,
		u.Email, u.Name, string(u.Role), u.PasswordHash, formatTime(u.CreatedAt),
	).Scan(&u.ID)
	if isUniqueViolation(err, "users.email") {
		return store.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("sqlite: create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return userByID(ctx, s.db, id)
}

func (s *Store) SetUserRole(ctx context.Context, id int64, role model.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("sqlite: set role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected (set role): %w", err)
	}
	if n == 0 {
		return booking.ErrRecordNotFound
	}
	return nil
}

func (t *txStore) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return userByID(ctx, t.tx, id)
}

func userByID(ctx context.Context, q queryer, id int64) (*model.User, error) {
	const stmt = `SELECT id, email, name, role, password_hash, created_at FROM users WHERE id = ?`
	return scanUser(q.QueryRowContext(ctx, stmt, id))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u       model.User
		name    sql.NullString
		role    string
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &name, &role, &u.PasswordHash, &created); err != nil {
		return nil, notFound(err)
	}
	if name.Valid {
		u.Name = &name.String
	}
	var err error
	if u.Role, err = model.ParseRole(role); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}
