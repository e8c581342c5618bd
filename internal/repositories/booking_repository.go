package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"

	"github.com/shopspring/decimal"
)

type BookingRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

func (r BookingRepository) WithTx(tx *sql.Tx) BookingRepository {
	r.tx = tx
	return r
}

// BookingFilter narrows List. Zero values mean "any".
type BookingFilter struct {
	Status      models.BookingStatus
	TripID      int64
	CustomerID  int64
	CreatedBy   int64
	OldestFirst bool
}

const bookingCols = `b.id, b.customer_id, b.trip_id, b.created_by, b.booking_date, b.total_amount, b.status, b.last_reminder_sent_at`

const amountPaidExpr = `COALESCE((SELECT SUM(p.amount_paid) FROM payments p WHERE p.booking_id = b.id), 0)`

func bookingDest(b *models.Booking, createdBy *sql.NullInt64, status *string, reminder *sql.NullTime) []any {
	return []any{&b.ID, &b.CustomerID, &b.TripID, createdBy, &b.BookingDate, &b.TotalAmount, status, reminder}
}

func scanBooking(s scanner) (models.Booking, error) {
	var b models.Booking
	var createdBy sql.NullInt64
	var status string
	var reminder sql.NullTime
	err := s.Scan(bookingDest(&b, &createdBy, &status, &reminder)...)
	b.CreatedBy = intdb.IDPtr(createdBy)
	b.Status = models.BookingStatus(status)
	b.LastReminderSentAt = intdb.TimePtr(reminder)
	return b, err
}

func scanBookingSummary(s scanner) (models.BookingSummary, error) {
	var out models.BookingSummary
	var createdBy sql.NullInt64
	var status string
	var reminder sql.NullTime
	var paid decimal.Decimal
	dest := append(bookingDest(&out.Booking, &createdBy, &status, &reminder),
		&out.CustomerName, &out.CustomerPassport, &out.TripName, &out.TripDeparture, &paid)
	if err := s.Scan(dest...); err != nil {
		return out, err
	}
	out.CreatedBy = intdb.IDPtr(createdBy)
	out.Status = models.BookingStatus(status)
	out.LastReminderSentAt = intdb.TimePtr(reminder)
	out.Balance = models.NewBalance(out.TotalAmount, paid)
	return out, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings b WHERE b.id=? LIMIT 1`, id))
	return b, notFound("booking", err)
}

// GetForUpdate locks the booking row until the surrounding transaction ends.
func (r BookingRepository) GetForUpdate(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings b WHERE b.id=? FOR UPDATE`, id))
	return b, notFound("booking", err)
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO bookings (customer_id, trip_id, created_by, booking_date, total_amount, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.CustomerID, b.TripID, intdb.NullID(b.CreatedBy), b.BookingDate, b.TotalAmount, string(b.Status))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	_, err := pick(r.DB, r.tx).ExecContext(ctx, `UPDATE bookings SET status=? WHERE id=?`, string(status), id)
	return err
}

// AmountPaid sums every payment recorded against the booking.
func (r BookingRepository) AmountPaid(ctx context.Context, id int64) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := pick(r.DB, r.tx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_paid),0) FROM payments WHERE booking_id=?`, id).Scan(&paid)
	return paid, err
}

func (f BookingFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "b.status=?")
		args = append(args, string(f.Status))
	}
	if f.TripID > 0 {
		conds = append(conds, "b.trip_id=?")
		args = append(args, f.TripID)
	}
	if f.CustomerID > 0 {
		conds = append(conds, "b.customer_id=?")
		args = append(args, f.CustomerID)
	}
	if f.CreatedBy > 0 {
		conds = append(conds, "b.created_by=?")
		args = append(args, f.CreatedBy)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns booking summaries. A zero PageSize returns every match.
func (r BookingRepository) List(ctx context.Context, f BookingFilter, page domain.Pagination) ([]models.BookingSummary, int, error) {
	where, args := f.where()
	conn := pick(r.DB, r.tx)

	order := ` ORDER BY b.booking_date DESC, b.id DESC`
	if f.OldestFirst {
		order = ` ORDER BY b.booking_date ASC, b.id ASC`
	}
	query := `SELECT ` + bookingCols + `, c.full_name, c.passport_number, t.name, t.departure_date, ` + amountPaidExpr + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		JOIN trips t ON t.id = b.trip_id` + where + order

	total := 0
	listArgs := args
	if page.PageSize > 0 {
		if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&total); err != nil {
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

	out := []models.BookingSummary{}
	for rows.Next() {
		s, err := scanBookingSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if page.PageSize <= 0 {
		total = len(out)
	}
	return out, total, rows.Err()
}

// Passengers returns customers holding non-cancelled bookings on a trip, by name.
func (r BookingRepository) Passengers(ctx context.Context, tripID int64) ([]models.Customer, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `
		SELECT c.id, c.full_name, c.phone_number, COALESCE(c.email,''), c.passport_number, c.passport_expiry_date,
			c.nationality, c.date_of_birth, c.created_by, c.created_at, c.updated_at
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.trip_id=? AND b.status <> 'cancelled'
		ORDER BY c.full_name ASC, b.id ASC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DueForReminder lists pending_payment bookings never reminded or last reminded before cutoff.
func (r BookingRepository) DueForReminder(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `SELECT `+bookingCols+` FROM bookings b
		WHERE b.status='pending_payment' AND (b.last_reminder_sent_at IS NULL OR b.last_reminder_sent_at < ?)
		ORDER BY b.booking_date ASC LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	_, err := pick(r.DB, r.tx).ExecContext(ctx, `UPDATE bookings SET last_reminder_sent_at=? WHERE id=?`, at, id)
	return err
}

// CountCreatedSince counts bookings made at or after since, optionally by one creator.
func (r BookingRepository) CountCreatedSince(ctx context.Context, since time.Time, createdBy int64) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE booking_date >= ?`
	args := []any{since}
	if createdBy > 0 {
		query += ` AND created_by=?`
		args = append(args, createdBy)
	}
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r BookingRepository) CountByStatus(ctx context.Context, status models.BookingStatus) (int, error) {
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE status=?`, string(status)).Scan(&n)
	return n, err
}
