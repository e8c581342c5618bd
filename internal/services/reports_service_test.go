package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleManifest(context.Context, int64) (Manifest, error) {
	dob := time.Date(1975, 2, 3, 0, 0, 0, 0, time.UTC)
	return Manifest{
		Trip: models.Trip{ID: 3, Name: "Umrah Rajab 2026", DepartureDate: fixedNow, ReturnDate: fixedNow.AddDate(0, 0, 14)},
		Passengers: []models.Customer{
			{FullName: "Aisha Rahman", PassportNumber: "A123456789", Nationality: "Saudi Arabia", DateOfBirth: dob},
			{FullName: "Omar Khalid", PassportNumber: "B987654321", Nationality: "Egypt", DateOfBirth: dob.AddDate(5, 0, 0)},
		},
	}, nil
}

func TestManifestPDF(t *testing.T) {
	data, name, err := ReportService{Loader: sampleManifest}.ManifestPDF(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "manifest_Umrah_Rajab_2026.pdf", name)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestManifestXLSXColumns(t *testing.T) {
	data, name, err := ReportService{Loader: sampleManifest}.ManifestXLSX(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "manifest_Umrah_Rajab_2026.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Manifest")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Full Name", "Passport Number", "Nationality", "Date of Birth"}, rows[0])
	assert.Equal(t, []string{"2", "Omar Khalid", "B987654321", "Egypt", "1980-02-03"}, rows[2])
}

func TestProfitabilityNetsExpenses(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM trips t WHERE t.id=\?`).WithArgs(int64(3)).
		WillReturnRows(tripRow(3, 20, "5000.00", models.TripActive))
	mock.ExpectQuery(`FROM payments p\s+JOIN bookings b`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("12000.00"))
	mock.ExpectQuery(`FROM expenses`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("4500.50"))

	p, err := ReportService{DB: db}.Profitability(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Umrah Rajab 2026", p.TripName)
	assert.True(t, p.NetProfit.Equal(decimal.RequireFromString("7499.50")), p.NetProfit.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfitabilityUnknownTrip(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM trips t WHERE t.id=\?`).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := ReportService{DB: db}.Profitability(context.Background(), 99)
	assert.True(t, domain.IsNotFound(err))
}
