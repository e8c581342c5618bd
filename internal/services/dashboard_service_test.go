package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"hajjumrahflow/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerDashboard(t *testing.T) {
	db, mock := newMock(t)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	weekStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM payments WHERE payment_date >= \? AND payment_date < \?`).
		WithArgs(monthStart, today.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("15250.00"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE booking_date >= \?`).WithArgs(weekStart).
		WillReturnRows(countRow(6))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM trips WHERE status=\?`).WithArgs("active").
		WillReturnRows(countRow(2))
	dep := fixedNow.AddDate(0, 1, 0)
	mock.ExpectQuery(`t.status IN \('scheduled','active'\) AND t.departure_date >= \?`).WithArgs(today, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "departure_date", "return_date", "total_seats", "price_per_person",
			"status", "hotel_details", "flight_details", "created_at", "updated_at", "booked"}).
			AddRow(3, "Umrah Rajab 2026", "", dep, dep.AddDate(0, 0, 14), 30, "5000.00", "scheduled", "", "", fixedNow, fixedNow, 7))

	d, err := DashboardService{DB: db, Now: clock}.For(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleManager})
	require.NoError(t, err)
	require.NotNil(t, d.MonthRevenue)
	assert.True(t, d.MonthRevenue.Equal(decimal.NewFromInt(15250)))
	assert.Equal(t, 6, *d.WeekBookings)
	assert.Equal(t, 2, *d.ActiveTrips)
	require.Len(t, d.UpcomingTrips, 1)
	assert.Equal(t, 23.33, d.UpcomingTrips[0].Occupancy)
	assert.Nil(t, d.CollectedToday)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAgentDashboardCountsOwnBookings(t *testing.T) {
	db, mock := newMock(t)
	today := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`booking_date >= \? AND created_by=\?`).WithArgs(today, int64(2)).WillReturnRows(countRow(3))
	mock.ExpectQuery(`FROM bookings WHERE status=\?`).WithArgs("pending_documents").WillReturnRows(countRow(9))

	d, err := DashboardService{DB: db, Now: clock}.For(context.Background(), agent)
	require.NoError(t, err)
	assert.Equal(t, 3, *d.MyBookingsToday)
	assert.Equal(t, 9, *d.PendingDocuments)
	assert.Nil(t, d.MonthRevenue)
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, events []domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func TestReminderJobStampsReminded(t *testing.T) {
	db, mock := newMock(t)
	cutoff := fixedNow.Add(-72 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "customer_id", "trip_id", "created_by", "booking_date", "total_amount", "status", "last_reminder_sent_at"}).
		AddRow(11, 7, 3, nil, fixedNow.AddDate(0, 0, -10), "5000.00", "pending_payment", nil).
		AddRow(12, 8, 3, 2, fixedNow.AddDate(0, 0, -9), "5000.00", "pending_payment", fixedNow.AddDate(0, 0, -4))
	mock.ExpectQuery(`WHERE b.status='pending_payment'`).WithArgs(cutoff, reminderBatch).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE bookings SET last_reminder_sent_at=\? WHERE id=\?`).WithArgs(fixedNow, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET last_reminder_sent_at=\? WHERE id=\?`).WithArgs(fixedNow, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := &recordingNotifier{}
	sent, err := ReminderJob{DB: db, Notifier: n, Cooldown: 72 * time.Hour, Now: clock}.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, n.events, 2)
	assert.Equal(t, domain.EventBookingPaymentReminder, n.events[0].Kind)
	assert.Equal(t, int64(8), n.events[1].Payload["customer_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardUnknownRole(t *testing.T) {
	_, err := DashboardService{Now: clock}.For(context.Background(), domain.Actor{UserID: 1, Role: "guest"})
	assert.True(t, domain.IsForbidden(err))
}
