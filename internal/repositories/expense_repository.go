package repositories

import (
	"context"
	"database/sql"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"

	"github.com/shopspring/decimal"
)

type ExpenseRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

const expenseCols = `id, trip_id, description, amount, expense_date, created_at`

func scanExpense(s scanner) (models.Expense, error) {
	var e models.Expense
	err := s.Scan(&e.ID, &e.TripID, &e.Description, &e.Amount, &e.ExpenseDate, &e.CreatedAt)
	return e, err
}

func (r ExpenseRepository) GetByID(ctx context.Context, id int64) (models.Expense, error) {
	e, err := scanExpense(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+expenseCols+` FROM expenses WHERE id=? LIMIT 1`, id))
	return e, notFound("expense", err)
}

// List returns expenses by date, optionally for one trip.
func (r ExpenseRepository) List(ctx context.Context, tripID int64) ([]models.Expense, error) {
	query := `SELECT ` + expenseCols + ` FROM expenses`
	var args []any
	if tripID > 0 {
		query += ` WHERE trip_id=?`
		args = append(args, tripID)
	}
	query += ` ORDER BY expense_date DESC, id DESC`

	rows, err := pick(r.DB, r.tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumByTrip totals a trip's expenses.
func (r ExpenseRepository) SumByTrip(ctx context.Context, tripID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT COALESCE(SUM(amount),0) FROM expenses WHERE trip_id=?`, tripID).Scan(&total)
	return total, err
}

func (r ExpenseRepository) Create(ctx context.Context, in models.ExpenseInput) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO expenses (trip_id, description, amount, expense_date, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, in.TripID, in.Description, in.Amount, in.ExpenseDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ExpenseRepository) Update(ctx context.Context, id int64, in models.ExpenseInput) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		UPDATE expenses SET trip_id=?, description=?, amount=?, expense_date=? WHERE id=?
	`, in.TripID, in.Description, in.Amount, in.ExpenseDate, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r ExpenseRepository) Delete(ctx context.Context, id int64) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `DELETE FROM expenses WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "expense"}
	}
	return nil
}
