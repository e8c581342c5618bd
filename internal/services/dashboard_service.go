package services

import (
	"context"
	"database/sql"
	"time"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"

	"github.com/shopspring/decimal"
)

const upcomingTripsLimit = 5

// UpcomingTrip is a dashboard row with the occupancy rounded for display.
type UpcomingTrip struct {
	models.TripWithStats
	Occupancy float64 `json:"occupancy"`
}

// Dashboard is the role-specific overview. Only the fields of the caller's
// role are filled.
type Dashboard struct {
	Role domain.Role `json:"role"`

	MonthRevenue  *decimal.Decimal `json:"month_revenue,omitempty"`
	WeekBookings  *int             `json:"week_bookings,omitempty"`
	ActiveTrips   *int             `json:"active_trips,omitempty"`
	UpcomingTrips []UpcomingTrip   `json:"upcoming_trips,omitempty"`

	MyBookingsToday  *int `json:"my_bookings_today,omitempty"`
	PendingDocuments *int `json:"pending_documents,omitempty"`

	CollectedToday  *decimal.Decimal `json:"collected_today,omitempty"`
	PendingPayments *int             `json:"pending_payments,omitempty"`
}

type DashboardService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

func (s DashboardService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s DashboardService) For(ctx context.Context, actor domain.Actor) (Dashboard, error) {
	now := nowOr(s.Now)
	out := Dashboard{Role: actor.Role}
	var err error
	switch actor.Role {
	case domain.RoleManager:
		err = s.manager(ctx, now, &out)
	case domain.RoleAgent:
		err = s.agent(ctx, now, actor.UserID, &out)
	case domain.RoleAccountant:
		err = s.accountant(ctx, now, &out)
	default:
		return out, domain.ForbiddenError{Msg: "No dashboard for this role."}
	}
	if err != nil {
		utils.LogFailure(s.RequestID, "dashboard", string(actor.Role), err)
		return Dashboard{}, err
	}
	return out, nil
}

func (s DashboardService) manager(ctx context.Context, now time.Time, out *Dashboard) error {
	revenue, err := repositories.PaymentRepository{DB: s.db()}.SumBetween(ctx, utils.StartOfMonth(now), utils.StartOfDay(now).AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	week, err := repositories.BookingRepository{DB: s.db()}.CountCreatedSince(ctx, utils.StartOfWeek(now), 0)
	if err != nil {
		return err
	}
	trips := repositories.TripRepository{DB: s.db()}
	active, err := trips.CountByStatus(ctx, models.TripActive)
	if err != nil {
		return err
	}
	upcoming, err := trips.Upcoming(ctx, utils.StartOfDay(now), upcomingTripsLimit)
	if err != nil {
		return err
	}
	out.MonthRevenue = &revenue
	out.WeekBookings = &week
	out.ActiveTrips = &active
	out.UpcomingTrips = make([]UpcomingTrip, 0, len(upcoming))
	for _, t := range upcoming {
		out.UpcomingTrips = append(out.UpcomingTrips, UpcomingTrip{TripWithStats: t, Occupancy: t.SeatStats.RoundedOccupancy()})
	}
	return nil
}

func (s DashboardService) agent(ctx context.Context, now time.Time, userID int64, out *Dashboard) error {
	bookings := repositories.BookingRepository{DB: s.db()}
	mine, err := bookings.CountCreatedSince(ctx, utils.StartOfDay(now), userID)
	if err != nil {
		return err
	}
	pending, err := bookings.CountByStatus(ctx, models.StatusPendingDocuments)
	if err != nil {
		return err
	}
	out.MyBookingsToday = &mine
	out.PendingDocuments = &pending
	return nil
}

func (s DashboardService) accountant(ctx context.Context, now time.Time, out *Dashboard) error {
	today := utils.StartOfDay(now)
	collected, err := repositories.PaymentRepository{DB: s.db()}.SumBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	pending, err := repositories.BookingRepository{DB: s.db()}.CountByStatus(ctx, models.StatusPendingPayment)
	if err != nil {
		return err
	}
	out.CollectedToday = &collected
	out.PendingPayments = &pending
	return nil
}
