package services

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func customerRow(id int64) *sqlmock.Rows {
	dob := time.Date(1980, 5, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "full_name", "phone_number", "email", "passport_number", "passport_expiry_date",
		"nationality", "date_of_birth", "created_by", "created_at", "updated_at"}).
		AddRow(id, "Aisha Rahman", "+966500000001", "aisha@example.com", "A123456789", dob.AddDate(50, 0, 0),
			"Saudi Arabia", dob, nil, fixedNow, fixedNow)
}

func tripRow(id int64, seats int, price string, status models.TripStatus) *sqlmock.Rows {
	dep := fixedNow.AddDate(0, 2, 0)
	return sqlmock.NewRows([]string{"id", "name", "description", "departure_date", "return_date", "total_seats", "price_per_person",
		"status", "hotel_details", "flight_details", "created_at", "updated_at"}).
		AddRow(id, "Umrah Rajab 2026", "", dep, dep.AddDate(0, 0, 14), seats, price, string(status), "", "", fixedNow, fixedNow)
}

func bookingRow(id, customerID, tripID int64, total string, status models.BookingStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "customer_id", "trip_id", "created_by", "booking_date", "total_amount", "status", "last_reminder_sent_at"}).
		AddRow(id, customerID, tripID, 2, fixedNow, total, string(status), nil)
}

func countRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"n"}).AddRow(n)
}

func expectBookingCreate(mock sqlmock.Sqlmock, seats, booked int, newID int64) {
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM customers WHERE id=\?`).WithArgs(int64(7)).WillReturnRows(customerRow(7))
	mock.ExpectQuery(`FROM trips t WHERE t.id=\? FOR UPDATE`).WithArgs(int64(3)).
		WillReturnRows(tripRow(3, seats, "5000.00", models.TripScheduled))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE trip_id=? AND status <> 'cancelled'`)).
		WithArgs(int64(3)).WillReturnRows(countRow(booked))
	if booked >= seats {
		mock.ExpectRollback()
		return
	}
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(int64(7), int64(3), int64(2), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(newID, 1))
	mock.ExpectCommit()
}

func expectAvailability(mock sqlmock.Sqlmock, seats, booked int) {
	mock.ExpectQuery(`FROM trips t WHERE t.id=\? LIMIT 1`).WithArgs(int64(3)).
		WillReturnRows(tripRow(3, seats, "5000.00", models.TripScheduled))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE trip_id=? AND status <> 'cancelled'`)).
		WithArgs(int64(3)).WillReturnRows(countRow(booked))
}

func expectPayment(mock sqlmock.Sqlmock, status models.BookingStatus, amount, paidAfter string, next models.BookingStatus) {
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings b WHERE b.id=\? FOR UPDATE`).WithArgs(int64(11)).
		WillReturnRows(bookingRow(11, 7, 3, "5000.00", status))
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(int64(11), sqlmock.AnyArg(), sqlmock.AnyArg(), "bank_transfer", int64(4)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_paid\),0\) FROM payments WHERE booking_id=\?`).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(paidAfter))
	if next != status {
		mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).WithArgs(string(next), int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

var (
	agent      = domain.Actor{UserID: 2, Role: domain.RoleAgent}
	accountant = domain.Actor{UserID: 4, Role: domain.RoleAccountant}
)

func TestBookingCreateDefaultsToTripPrice(t *testing.T) {
	db, mock := newMock(t)
	expectBookingCreate(mock, 20, 0, 11)

	svc := BookingService{DB: db, Now: clock}
	b, events, err := svc.Create(context.Background(), agent, models.BookingInput{CustomerID: 7, TripID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(11), b.ID)
	assert.Equal(t, models.StatusPendingDocuments, b.Status)
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(5000)))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBookingCreated, events[0].Kind)
	assert.Equal(t, int64(11), events[0].Payload["booking_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRejectsFullTrip(t *testing.T) {
	db, mock := newMock(t)
	expectBookingCreate(mock, 20, 20, 0)

	_, events, err := BookingService{DB: db, Now: clock}.Create(context.Background(), agent, models.BookingInput{CustomerID: 7, TripID: 3})
	require.Error(t, err)
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "no_available_seats", verr.Code)
	assert.Equal(t, MsgNoSeats, verr.Msg)
	assert.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRejectsClosedTrip(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM customers WHERE id=\?`).WithArgs(int64(7)).WillReturnRows(customerRow(7))
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(3)).WillReturnRows(tripRow(3, 20, "5000.00", models.TripCompleted))
	mock.ExpectRollback()

	_, _, err := BookingService{DB: db, Now: clock}.Create(context.Background(), agent, models.BookingInput{CustomerID: 7, TripID: 3})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "trip_not_bookable", verr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRequiresCustomer(t *testing.T) {
	_, _, err := BookingService{Now: clock}.Create(context.Background(), agent, models.BookingInput{TripID: 3})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "customer", verr.Field)
}

func TestBookingUpdateStatusRejectsLeavingCancelled(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(11)).WillReturnRows(bookingRow(11, 7, 3, "5000.00", models.StatusCancelled))
	mock.ExpectRollback()

	_, err := BookingService{DB: db}.UpdateStatus(context.Background(), 11, models.StatusConfirmed)
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_transition", verr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusSameIsNoop(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(11)).WillReturnRows(bookingRow(11, 7, 3, "5000.00", models.StatusConfirmed))
	mock.ExpectCommit()

	b, err := BookingService{DB: db}.UpdateStatus(context.Background(), 11, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRejectsNonPositiveAmounts(t *testing.T) {
	db, mock := newMock(t)
	svc := PaymentService{DB: db, Now: clock}
	for _, amount := range []string{"0", "-100", "0.004", "-0.001"} {
		_, events, err := svc.Record(context.Background(), accountant, models.PaymentInput{
			BookingID: 11, AmountPaid: decimal.RequireFromString(amount), PaymentMethod: models.MethodCash,
		})
		verr, ok := domain.AsValidation(err)
		require.True(t, ok, "amount %s", amount)
		assert.Equal(t, "amount_paid", verr.Field)
		assert.Equal(t, MsgPaymentAmount, verr.Msg)
		assert.Empty(t, events)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRejectsCancelledBooking(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(11)).WillReturnRows(bookingRow(11, 7, 3, "5000.00", models.StatusCancelled))
	mock.ExpectRollback()

	_, _, err := PaymentService{DB: db, Now: clock}.Record(context.Background(), accountant,
		models.PaymentInput{BookingID: 11, AmountPaid: decimal.NewFromInt(100)})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "booking_cancelled", verr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentOnPendingDocumentsKeepsStatusUntilSettled(t *testing.T) {
	db, mock := newMock(t)
	expectPayment(mock, models.StatusPendingDocuments, "1000", "1000.00", models.StatusPendingDocuments)

	res, _, err := PaymentService{DB: db, Now: clock}.Record(context.Background(), accountant,
		models.PaymentInput{BookingID: 11, AmountPaid: decimal.NewFromInt(1000), PaymentMethod: models.MethodBankTransfer})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingDocuments, res.Booking.Status)
	assert.True(t, res.Balance.BalanceDue.Equal(decimal.NewFromInt(4000)))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Twenty seats, one booking awaiting payment, paid off in two instalments.
func TestBookingAndPaymentFlow(t *testing.T) {
	db, mock := newMock(t)
	ctx := context.Background()
	bookings := BookingService{DB: db, Now: clock}
	trips := TripService{DB: db}
	payments := PaymentService{DB: db, Now: clock}

	expectBookingCreate(mock, 20, 0, 11)
	b, _, err := bookings.Create(ctx, agent, models.BookingInput{CustomerID: 7, TripID: 3, Status: models.StatusPendingPayment})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, b.Status)

	expectAvailability(mock, 20, 1)
	seats, err := trips.Availability(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 19, seats.AvailableSeats)
	assert.Equal(t, seats.TotalSeats, seats.BookedSeats+seats.AvailableSeats)

	expectPayment(mock, models.StatusPendingPayment, "2000", "2000.00", models.StatusConfirmed)
	res, events, err := payments.Record(ctx, accountant, models.PaymentInput{
		BookingID: 11, AmountPaid: decimal.NewFromInt(2000), PaymentMethod: models.MethodBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, res.Booking.Status)
	assert.True(t, res.Balance.AmountPaid.Equal(decimal.NewFromInt(2000)))
	assert.True(t, res.Balance.BalanceDue.Equal(decimal.NewFromInt(3000)))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventPaymentReceived, events[0].Kind)

	expectPayment(mock, models.StatusConfirmed, "3000", "5000.00", models.StatusFullyPaid)
	res, _, err = payments.Record(ctx, accountant, models.PaymentInput{
		BookingID: 11, AmountPaid: decimal.NewFromInt(3000), PaymentMethod: models.MethodBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFullyPaid, res.Booking.Status)
	assert.True(t, res.Balance.BalanceDue.IsZero())
	assert.True(t, res.Balance.AmountPaid.Equal(decimal.NewFromInt(5000)))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancellingBookingFreesSeat(t *testing.T) {
	db, mock := newMock(t)
	ctx := context.Background()
	trips := TripService{DB: db}

	expectAvailability(mock, 20, 4)
	before, err := trips.Availability(ctx, 3)
	require.NoError(t, err)

	expectBookingCreate(mock, 20, 4, 11)
	_, _, err = BookingService{DB: db, Now: clock}.Create(ctx, agent, models.BookingInput{CustomerID: 7, TripID: 3})
	require.NoError(t, err)

	expectAvailability(mock, 20, 5)
	during, err := trips.Availability(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, before.AvailableSeats-1, during.AvailableSeats)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(11)).WillReturnRows(bookingRow(11, 7, 3, "5000.00", models.StatusPendingDocuments))
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).WithArgs("cancelled", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	b, err := BookingService{DB: db}.UpdateStatus(ctx, 11, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)

	expectAvailability(mock, 20, 4)
	after, err := trips.Availability(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, before.AvailableSeats, after.AvailableSeats)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripUpdateRejectsSeatsBelowBooked(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM trips t WHERE t.id=\? LIMIT 1`).WithArgs(int64(3)).
		WillReturnRows(tripRow(3, 20, "5000.00", models.TripScheduled))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs(int64(3)).WillReturnRows(countRow(12))

	dep := fixedNow.AddDate(0, 1, 0)
	_, err := TripService{DB: db}.Update(context.Background(), 3, models.TripInput{
		Name: "Umrah", DepartureDate: dep, ReturnDate: dep.AddDate(0, 0, 10), TotalSeats: 10, PricePerPerson: decimal.NewFromInt(100),
	})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "below_booked", verr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripCreateRejectsReturnBeforeDeparture(t *testing.T) {
	dep := fixedNow.AddDate(0, 1, 0)
	_, err := TripService{}.Create(context.Background(), models.TripInput{
		Name: "Umrah", DepartureDate: dep, ReturnDate: dep, TotalSeats: 10,
	})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, MsgReturnBeforeDeparture, verr.Msg)
}
