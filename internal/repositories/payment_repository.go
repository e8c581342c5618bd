package repositories

import (
	"context"
	"database/sql"
	"time"

	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"

	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

func (r PaymentRepository) WithTx(tx *sql.Tx) PaymentRepository {
	r.tx = tx
	return r
}

const paymentCols = `id, booking_id, amount_paid, payment_date, payment_method, recorded_by, created_at`

func scanPayment(s scanner) (models.Payment, error) {
	var p models.Payment
	var method string
	var recordedBy sql.NullInt64
	err := s.Scan(&p.ID, &p.BookingID, &p.AmountPaid, &p.PaymentDate, &method, &recordedBy, &p.CreatedAt)
	p.PaymentMethod = models.PaymentMethod(method)
	p.RecordedBy = intdb.IDPtr(recordedBy)
	return p, err
}

func (r PaymentRepository) GetByID(ctx context.Context, id int64) (models.Payment, error) {
	p, err := scanPayment(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+paymentCols+` FROM payments WHERE id=? LIMIT 1`, id))
	return p, notFound("payment", err)
}

// Create inserts a payment. Callers validate amount; the schema CHECK rejects non-positive values too.
func (r PaymentRepository) Create(ctx context.Context, p models.Payment) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO payments (booking_id, amount_paid, payment_date, payment_method, recorded_by, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`, p.BookingID, p.AmountPaid, p.PaymentDate, string(p.PaymentMethod), intdb.NullID(p.RecordedBy))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns payments newest first, optionally for one booking. A zero PageSize returns all.
func (r PaymentRepository) List(ctx context.Context, bookingID int64, page domain.Pagination) ([]models.Payment, int, error) {
	where := ""
	var args []any
	if bookingID > 0 {
		where = ` WHERE booking_id=?`
		args = append(args, bookingID)
	}
	conn := pick(r.DB, r.tx)
	query := `SELECT ` + paymentCols + ` FROM payments` + where + ` ORDER BY payment_date DESC, id DESC`

	total := 0
	listArgs := args
	if page.PageSize > 0 {
		if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
			return nil, 0, err
		}
		limit, offset := limitOffset(page)
		query += ` LIMIT ? OFFSET ?`
		listArgs = append(append([]any{}, args...), limit, offset)
	}

	rows, err := conn.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if page.PageSize <= 0 {
		total = len(out)
	}
	return out, total, rows.Err()
}

// SumForTrip totals payments on the trip's non-cancelled bookings.
func (r PaymentRepository) SumForTrip(ctx context.Context, tripID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := pick(r.DB, r.tx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.amount_paid),0)
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.trip_id=? AND b.status <> 'cancelled'
	`, tripID).Scan(&total)
	return total, err
}

// SumBetween totals payments dated in [from, to).
func (r PaymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := pick(r.DB, r.tx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_paid),0) FROM payments WHERE payment_date >= ? AND payment_date < ?`, from, to).Scan(&total)
	return total, err
}
