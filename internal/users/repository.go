package users

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"schoolportal/internal/store"
)

const userColumns = `id, email, password_hash, role, fullname`

// Repository persists users.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repo.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts u and returns it with its new id. A taken email yields ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO users (email, password_hash, role, fullname)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), u.Email, u.PasswordHash, u.Role.String(), u.Fullname).Scan(&u.ID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, errors.Wrap(err, "insert user")
	}
	return u, nil
}

// GetByEmail returns the user with the exact (normalized) email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	return u, notFound(err, "get user by email")
}

// GetByID returns a single user.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return u, notFound(err, "get user by id")
}

// List returns every user ordered by id.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	res := []User{}
	if err := r.db.SelectContext(ctx, &res, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return res, nil
}

// ListByRole returns the users holding role, ordered by name.
func (r *Repository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	res := []User{}
	err := r.db.SelectContext(ctx, &res, r.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY fullname, id
	`), role.String())
	if err != nil {
		return nil, errors.Wrap(err, "list users by role")
	}
	return res, nil
}

// Count returns the number of users.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return n, nil
}

// Delete removes a user. Rows the user owns as a student go with it.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, op)
}
