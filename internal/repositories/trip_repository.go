package repositories

import (
	"context"
	"database/sql"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
)

type TripRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

func (r TripRepository) WithTx(tx *sql.Tx) TripRepository {
	r.tx = tx
	return r
}

const tripCols = `t.id, t.name, t.description, t.departure_date, t.return_date, t.total_seats, t.price_per_person,
	t.status, t.hotel_details, t.flight_details, t.created_at, t.updated_at`

// bookedSeatsExpr counts non-cancelled bookings; cancelling a booking frees its seat.
const bookedSeatsExpr = `(SELECT COUNT(*) FROM bookings b WHERE b.trip_id = t.id AND b.status <> 'cancelled')`

func tripDest(t *models.Trip, status *string) []any {
	return []any{&t.ID, &t.Name, &t.Description, &t.DepartureDate, &t.ReturnDate, &t.TotalSeats, &t.PricePerPerson,
		status, &t.HotelDetails, &t.FlightDetails, &t.CreatedAt, &t.UpdatedAt}
}

func scanTrip(s scanner) (models.Trip, error) {
	var t models.Trip
	var status string
	err := s.Scan(tripDest(&t, &status)...)
	t.Status = models.TripStatus(status)
	return t, err
}

func scanTripWithStats(s scanner) (models.TripWithStats, error) {
	var t models.Trip
	var status string
	var booked int
	err := s.Scan(append(tripDest(&t, &status), &booked)...)
	t.Status = models.TripStatus(status)
	return models.TripWithStats{Trip: t, SeatStats: models.NewSeatStats(t.TotalSeats, booked)}, err
}

func (r TripRepository) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	t, err := scanTrip(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+tripCols+` FROM trips t WHERE t.id=? LIMIT 1`, id))
	return t, notFound("trip", err)
}

// GetForUpdate locks the trip row until the surrounding transaction ends.
func (r TripRepository) GetForUpdate(ctx context.Context, id int64) (models.Trip, error) {
	t, err := scanTrip(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+tripCols+` FROM trips t WHERE t.id=? FOR UPDATE`, id))
	return t, notFound("trip", err)
}

// BookedSeats counts the trip's non-cancelled bookings.
func (r TripRepository) BookedSeats(ctx context.Context, id int64) (int, error) {
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE trip_id=? AND status <> 'cancelled'`, id).Scan(&n)
	return n, err
}

// List returns trips by departure date with seat stats, optionally filtered by status.
func (r TripRepository) List(ctx context.Context, status models.TripStatus, page domain.Pagination) ([]models.TripWithStats, int, error) {
	where := ""
	var args []any
	if status != "" {
		where = ` WHERE t.status=?`
		args = append(args, string(status))
	}
	conn := pick(r.DB, r.tx)

	var total int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips t`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page)
	rows, err := conn.QueryContext(ctx, `SELECT `+tripCols+`, `+bookedSeatsExpr+` FROM trips t`+where+
		` ORDER BY t.departure_date ASC, t.id ASC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.TripWithStats{}
	for rows.Next() {
		t, err := scanTripWithStats(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// Upcoming returns scheduled or active trips departing at or after from.
func (r TripRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]models.TripWithStats, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `SELECT `+tripCols+`, `+bookedSeatsExpr+` FROM trips t
		WHERE t.status IN ('scheduled','active') AND t.departure_date >= ?
		ORDER BY t.departure_date ASC LIMIT ?`, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TripWithStats{}
	for rows.Next() {
		t, err := scanTripWithStats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Bookable returns scheduled or active trips that still have a free seat.
func (r TripRepository) Bookable(ctx context.Context) ([]models.TripWithStats, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `SELECT `+tripCols+`, `+bookedSeatsExpr+` AS booked FROM trips t
		WHERE t.status IN ('scheduled','active')
		HAVING booked < t.total_seats
		ORDER BY t.departure_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TripWithStats{}
	for rows.Next() {
		t, err := scanTripWithStats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TripRepository) CountByStatus(ctx context.Context, status models.TripStatus) (int, error) {
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM trips WHERE status=?`, string(status)).Scan(&n)
	return n, err
}

func (r TripRepository) Create(ctx context.Context, in models.TripInput) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO trips (name, description, departure_date, return_date, total_seats, price_per_person,
			status, hotel_details, flight_details, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, in.Name, in.Description, in.DepartureDate, in.ReturnDate, in.TotalSeats, in.PricePerPerson,
		string(in.Status), in.HotelDetails, in.FlightDetails)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r TripRepository) Update(ctx context.Context, id int64, in models.TripInput) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		UPDATE trips SET name=?, description=?, departure_date=?, return_date=?, total_seats=?, price_per_person=?,
			status=?, hotel_details=?, flight_details=?, updated_at=NOW()
		WHERE id=?
	`, in.Name, in.Description, in.DepartureDate, in.ReturnDate, in.TotalSeats, in.PricePerPerson,
		string(in.Status), in.HotelDetails, in.FlightDetails, id)
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
