package repositories

import (
	"context"
	"database/sql"
	"strings"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

func (r UserRepository) WithTx(tx *sql.Tx) UserRepository {
	r.tx = tx
	return r
}

const userCols = `id, username, email, first_name, last_name, password_hash, role, is_active, created_at, updated_at`

func scanUser(s scanner) (models.User, error) {
	var u models.User
	var role string
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Role = domain.Role(role)
	return u, err
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=? LIMIT 1`, id))
	return u, notFound("user", err)
}

// GetByLogin matches either username or email.
func (r UserRepository) GetByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.TrimSpace(login)
	u, err := scanUser(pick(r.DB, r.tx).QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE username=? OR (email<>'' AND email=?) LIMIT 1`, login, login))
	return u, notFound("user", err)
}

func (r UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, string(u.Role), u.IsActive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ExistsUsername reports whether a username is taken.
func (r UserRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username=?`, username).Scan(&n)
	return n > 0, err
}

// Count returns the number of users, used by health checks.
func (r UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
