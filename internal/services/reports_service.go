package services

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"

	"github.com/shopspring/decimal"
)

// Profitability of one trip: revenue counts payments on non-cancelled bookings only.
type Profitability struct {
	TripID        int64           `json:"trip_id"`
	TripName      string          `json:"trip_name"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
}

// Manifest is the passenger list of a trip.
type Manifest struct {
	Trip       models.Trip       `json:"trip"`
	Passengers []models.Customer `json:"passengers"`
}

type ReportService struct {
	DB        *sql.DB
	RequestID string
	// Loader overrides manifest loading, used by tests.
	Loader func(ctx context.Context, tripID int64) (Manifest, error)
}

func (s ReportService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReportService) Profitability(ctx context.Context, tripID int64) (Profitability, error) {
	trip, err := repositories.TripRepository{DB: s.db()}.GetByID(ctx, tripID)
	if err != nil {
		return Profitability{}, err
	}
	revenue, err := repositories.PaymentRepository{DB: s.db()}.SumForTrip(ctx, tripID)
	if err != nil {
		return Profitability{}, err
	}
	expenses, err := repositories.ExpenseRepository{DB: s.db()}.SumByTrip(ctx, tripID)
	if err != nil {
		return Profitability{}, err
	}
	utils.LogEvent(s.RequestID, "reports", "profitability", fmt.Sprintf("trip_id=%d", tripID))
	return Profitability{
		TripID:        trip.ID,
		TripName:      trip.Name,
		TotalRevenue:  revenue,
		TotalExpenses: expenses,
		NetProfit:     revenue.Sub(expenses),
	}, nil
}

// Overdue lists every pending_payment booking, oldest first.
func (s ReportService) Overdue(ctx context.Context) ([]models.BookingSummary, error) {
	items, _, err := repositories.BookingRepository{DB: s.db()}.List(ctx,
		repositories.BookingFilter{Status: models.StatusPendingPayment, OldestFirst: true}, domain.Pagination{})
	return items, err
}

func (s ReportService) Manifest(ctx context.Context, tripID int64) (Manifest, error) {
	if s.Loader != nil {
		return s.Loader(ctx, tripID)
	}
	trip, err := repositories.TripRepository{DB: s.db()}.GetByID(ctx, tripID)
	if err != nil {
		return Manifest{}, err
	}
	passengers, err := repositories.BookingRepository{DB: s.db()}.Passengers(ctx, tripID)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{Trip: trip, Passengers: passengers}, nil
}

// ManifestPDF renders the manifest and returns bytes plus a download filename.
func (s ReportService) ManifestPDF(ctx context.Context, tripID int64) ([]byte, string, error) {
	m, err := s.Manifest(ctx, tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "reports", "manifest_pdf", fmt.Sprintf("trip_id=%d passengers=%d", tripID, len(m.Passengers)))
	return buildManifestPDF(m)
}

// ManifestXLSX renders the manifest as a spreadsheet.
func (s ReportService) ManifestXLSX(ctx context.Context, tripID int64) ([]byte, string, error) {
	m, err := s.Manifest(ctx, tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "reports", "manifest_xlsx", fmt.Sprintf("trip_id=%d passengers=%d", tripID, len(m.Passengers)))
	return buildManifestXLSX(m)
}
