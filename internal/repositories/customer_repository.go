package repositories

import (
	"context"
	"database/sql"
	"strings"

	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
)

type CustomerRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

func (r CustomerRepository) WithTx(tx *sql.Tx) CustomerRepository {
	r.tx = tx
	return r
}

const customerCols = `id, full_name, phone_number, COALESCE(email,''), passport_number, passport_expiry_date,
	nationality, date_of_birth, created_by, created_at, updated_at`

func scanCustomer(s scanner) (models.Customer, error) {
	var c models.Customer
	var createdBy sql.NullInt64
	err := s.Scan(&c.ID, &c.FullName, &c.PhoneNumber, &c.Email, &c.PassportNumber, &c.PassportExpiryDate,
		&c.Nationality, &c.DateOfBirth, &createdBy, &c.CreatedAt, &c.UpdatedAt)
	c.CreatedBy = intdb.IDPtr(createdBy)
	return c, err
}

func (r CustomerRepository) GetByID(ctx context.Context, id int64) (models.Customer, error) {
	c, err := scanCustomer(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+customerCols+` FROM customers WHERE id=? LIMIT 1`, id))
	return c, notFound("customer", err)
}

// List returns customers newest first; q matches name, phone or passport.
func (r CustomerRepository) List(ctx context.Context, q string, page domain.Pagination) ([]models.Customer, int, error) {
	where := ""
	var args []any
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + q + "%"
		where = ` WHERE full_name LIKE ? OR phone_number LIKE ? OR passport_number LIKE ?`
		args = append(args, like, like, like)
	}

	conn := pick(r.DB, r.tx)
	var total int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := limitOffset(page)
	rows, err := conn.QueryContext(ctx, `SELECT `+customerCols+` FROM customers`+where+
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// ExistsOther reports whether another customer already holds value in column,
// compared case-insensitively. column must be one of the unique columns.
func (r CustomerRepository) ExistsOther(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	switch column {
	case "phone_number", "passport_number", "email":
	default:
		return false, domain.InternalError{Msg: "unsupported unique column " + column}
	}
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE LOWER(`+column+`) = LOWER(?) AND id <> ?`,
		strings.TrimSpace(value), excludeID).Scan(&n)
	return n > 0, err
}

func (r CustomerRepository) Create(ctx context.Context, in models.CustomerInput, createdBy *int64) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO customers (full_name, phone_number, email, passport_number, passport_expiry_date,
			nationality, date_of_birth, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, in.FullName, in.PhoneNumber, intdb.NullIfEmpty(in.Email), in.PassportNumber, in.PassportExpiryDate,
		in.Nationality, in.DateOfBirth, intdb.NullID(createdBy))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r CustomerRepository) Update(ctx context.Context, id int64, in models.CustomerInput) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		UPDATE customers SET full_name=?, phone_number=?, email=?, passport_number=?, passport_expiry_date=?,
			nationality=?, date_of_birth=?, updated_at=NOW()
		WHERE id=?
	`, in.FullName, in.PhoneNumber, intdb.NullIfEmpty(in.Email), in.PassportNumber, in.PassportExpiryDate,
		in.Nationality, in.DateOfBirth, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 when nothing changed; confirm the row exists.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a customer; documents, logs and bookings cascade.
func (r CustomerRepository) Delete(ctx context.Context, id int64) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `DELETE FROM customers WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "customer"}
	}
	return nil
}

// Options returns id, name and passport of every customer for select inputs.
func (r CustomerRepository) Options(ctx context.Context) ([]models.Customer, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `SELECT id, full_name, passport_number FROM customers ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.PassportNumber); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
