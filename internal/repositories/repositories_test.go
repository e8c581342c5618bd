package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func tripColumns() []string {
	return []string{"id", "name", "description", "departure_date", "return_date", "total_seats", "price_per_person",
		"status", "hotel_details", "flight_details", "created_at", "updated_at"}
}

func TestCustomerExistsOtherIsCaseInsensitive(t *testing.T) {
	db, mock := newMock(t)
	repo := CustomerRepository{DB: db}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE LOWER\(passport_number\) = LOWER\(\?\) AND id <> \?`).
		WithArgs("ab123", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	exists, err := repo.ExistsOther(context.Background(), "passport_number", " ab123 ", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.ExistsOther(context.Background(), "full_name", "x", 0)
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM customers WHERE id=\\?").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := CustomerRepository{DB: db}.GetByID(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))
}

func TestTripListDerivesSeatStats(t *testing.T) {
	db, mock := newMock(t)
	dep := time.Date(2026, 12, 1, 8, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM trips t WHERE t.status=\?`).WithArgs("scheduled").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(`status <> 'cancelled'`).WithArgs("scheduled", 10, 0).
		WillReturnRows(sqlmock.NewRows(append(tripColumns(), "booked")).
			AddRow(1, "Umrah Rajab", "", dep, dep.AddDate(0, 0, 14), 20, "5000.00", "scheduled", "", "", now, now, 1))

	trips, total, err := TripRepository{DB: db}.List(context.Background(), models.TripScheduled, domain.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 19, trips[0].AvailableSeats)
	assert.Equal(t, 1, trips[0].BookedSeats)
	assert.True(t, trips[0].PricePerPerson.Equal(decimal.NewFromInt(5000)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripGetForUpdateLocksRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	dep := time.Date(2026, 12, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM trips t WHERE t.id=\? FOR UPDATE`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(tripColumns()).
			AddRow(3, "Hajj", "", dep, dep.AddDate(0, 0, 20), 40, "9000.00", "active", "", "", dep, dep))

	trip, err := TripRepository{}.WithTx(tx).GetForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TripActive, trip.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListSummaryComputesBalance(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b WHERE b.status=\? AND b.trip_id=\?`).
		WithArgs("confirmed", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(`JOIN customers c ON c.id = b.customer_id`).
		WithArgs("confirmed", int64(4), 15, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "trip_id", "created_by", "booking_date", "total_amount",
			"status", "last_reminder_sent_at", "full_name", "passport_number", "name", "departure_date", "paid"}).
			AddRow(7, 2, 4, nil, at, "5000.00", "confirmed", nil, "Aisha", "P1", "Umrah", at, "2000.00"))

	list, total, err := BookingRepository{DB: db}.List(context.Background(),
		BookingFilter{Status: models.StatusConfirmed, TripID: 4}, domain.Pagination{Page: 1, PageSize: 15})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, list[0].CreatedBy)
	assert.True(t, list[0].BalanceDue.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "Aisha", list[0].CustomerName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSumForTripExcludesCancelled(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`WHERE b.trip_id=\? AND b.status <> 'cancelled'`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("7500.00"))

	sum, err := PaymentRepository{DB: db}.SumForTrip(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "7500", sum.String())
}

func TestDocumentDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM documents WHERE id=\?`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := DocumentRepository{DB: db}.Delete(context.Background(), 5)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingDueForReminder(t *testing.T) {
	db, mock := newMock(t)
	cutoff := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`last_reminder_sent_at IS NULL OR b.last_reminder_sent_at < \?`).WithArgs(cutoff, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "trip_id", "created_by", "booking_date", "total_amount",
			"status", "last_reminder_sent_at"}).
			AddRow(1, 2, 3, 5, cutoff.AddDate(0, 0, -5), "100.00", "pending_payment", nil))

	list, err := BookingRepository{DB: db}.DueForReminder(context.Background(), cutoff, 100)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].CreatedBy)
	assert.Equal(t, int64(5), *list[0].CreatedBy)
	assert.Nil(t, list[0].LastReminderSentAt)
}
