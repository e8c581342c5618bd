package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tripColumns = []string{"id", "name", "description", "departure_date", "return_date", "total_seats",
	"price_per_person", "status", "hotel_details", "flight_details", "created_at", "updated_at"}

func TestListTripsExposesSeatFigures(t *testing.T) {
	mock := useMockDB(t)
	useDeps(t, Deps{})
	dep := time.Date(2026, 12, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM trips t`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY t.departure_date ASC`).WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(append(tripColumns, "booked")).
			AddRow(3, "Umrah Rajab 2026", "", dep, dep.AddDate(0, 0, 14), 20, "5000.00", "scheduled", "", "", fixedNow, fixedNow, 1))

	w := serve(http.MethodGet, "/trips", "/trips", "", accountant, ListTrips)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	trip := body.Results[0]
	assert.Equal(t, float64(20), trip["total_seats"])
	assert.Equal(t, float64(1), trip["booked_seats"])
	assert.Equal(t, float64(19), trip["available_seats"])
	assert.Equal(t, "Umrah Rajab 2026", trip["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripAvailabilityIncludesCapacity(t *testing.T) {
	mock := useMockDB(t)
	useDeps(t, Deps{})
	dep := time.Date(2026, 12, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM trips t WHERE t.id=\? LIMIT 1`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(3, "Umrah Rajab 2026", "", dep, dep.AddDate(0, 0, 14), 20, "5000.00", "scheduled", "", "", fixedNow, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE trip_id=? AND status <> 'cancelled'`)).
		WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(19))

	w := serve(http.MethodGet, "/trips/:id/availability", "/trips/3/availability", "", accountant, TripAvailability)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["trip_id"])
	assert.Equal(t, float64(20), body["total_seats"])
	assert.Equal(t, float64(19), body["booked_seats"])
	assert.Equal(t, float64(1), body["available_seats"])
	require.NoError(t, mock.ExpectationsWereMet())
}
