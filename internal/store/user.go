package store

import (
	"context"
	"errors"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
)

var ErrDuplicateEmail = errors.New("email already registered")

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (email, name, role, password_hash) VALUES ($1,$2,$3,$4)
		 RETURNING id, created_at`,
		u.Email, u.Name, string(u.Role), u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err, "users_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT id, email, name, role, password_hash, created_at
		 FROM users WHERE email = $1`, email,
	))
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return userByID(ctx, s.db, id)
}

// SetUserRole changes a user's role. It backs the admin promotion flow.
func (s *Store) SetUserRole(ctx context.Context, id int64, role model.Role) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrRecordNotFound
	}
	return nil
}

func (t *txStore) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return userByID(ctx, t.q, id)
}

func userByID(ctx context.Context, q querier, id int64) (*model.User, error) {
	return scanUser(q.QueryRow(ctx,
		`SELECT id, email, name, role, password_hash, created_at
		 FROM users WHERE id = $1`, id,
	))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = r
	return u, nil
}
