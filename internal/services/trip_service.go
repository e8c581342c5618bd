package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"

	"github.com/shopspring/decimal"
)

const TripPageSize = 10

const (
	MsgReturnBeforeDeparture = "Return date must be after the departure date."
	MsgNegativeSeats         = "Total seats cannot be negative."
)

type TripService struct {
	DB        *sql.DB
	RequestID string
}

func (s TripService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s TripService) trips() repositories.TripRepository {
	return repositories.TripRepository{DB: s.db()}
}

func validateTrip(in models.TripInput) (models.TripInput, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.HotelDetails = strings.TrimSpace(in.HotelDetails)
	in.FlightDetails = strings.TrimSpace(in.FlightDetails)
	if in.Status == "" {
		in.Status = models.TripScheduled
	}
	if err := validateStruct(in); err != nil {
		return in, err
	}
	if !in.ReturnDate.After(in.DepartureDate) {
		return in, domain.ValidationError{Field: "return_date", Code: "invalid_dates", Msg: MsgReturnBeforeDeparture}
	}
	if in.TotalSeats < 0 {
		return in, domain.ValidationError{Field: "total_seats", Code: "negative_seats", Msg: MsgNegativeSeats}
	}
	in.PricePerPerson = in.PricePerPerson.Round(2)
	if in.PricePerPerson.IsNegative() {
		return in, domain.ValidationError{Field: "price_per_person", Code: "negative_price", Msg: "Price per person cannot be negative."}
	}
	if !in.Status.Valid() {
		return in, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid status.", in.Status)}
	}
	return in, nil
}

func (s TripService) Create(ctx context.Context, in models.TripInput) (models.Trip, error) {
	in, err := validateTrip(in)
	if err != nil {
		return models.Trip{}, err
	}
	id, err := s.trips().Create(ctx, in)
	if err != nil {
		return models.Trip{}, err
	}
	utils.LogEvent(s.RequestID, "trip", "create", fmt.Sprintf("trip_id=%d seats=%d", id, in.TotalSeats))
	return s.trips().GetByID(ctx, id)
}

// Update rewrites a trip. Seats may not drop below the number already booked.
func (s TripService) Update(ctx context.Context, id int64, in models.TripInput) (models.Trip, error) {
	if _, err := s.trips().GetByID(ctx, id); err != nil {
		return models.Trip{}, err
	}
	in, err := validateTrip(in)
	if err != nil {
		return models.Trip{}, err
	}
	booked, err := s.trips().BookedSeats(ctx, id)
	if err != nil {
		return models.Trip{}, err
	}
	if in.TotalSeats < booked {
		return models.Trip{}, domain.ValidationError{
			Field: "total_seats",
			Code:  "below_booked",
			Msg:   fmt.Sprintf("Total seats cannot be lower than the %d seats already booked.", booked),
		}
	}
	if err := s.trips().Update(ctx, id, in); err != nil {
		return models.Trip{}, err
	}
	utils.LogEvent(s.RequestID, "trip", "update", fmt.Sprintf("trip_id=%d", id))
	return s.trips().GetByID(ctx, id)
}

func (s TripService) Get(ctx context.Context, id int64) (models.TripWithStats, error) {
	t, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return models.TripWithStats{}, err
	}
	booked, err := s.trips().BookedSeats(ctx, id)
	if err != nil {
		return models.TripWithStats{}, err
	}
	return models.TripWithStats{Trip: t, SeatStats: models.NewSeatStats(t.TotalSeats, booked)}, nil
}

// Availability returns the derived seat figures of a trip.
func (s TripService) Availability(ctx context.Context, id int64) (models.TripAvailability, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return models.TripAvailability{}, err
	}
	return t.Availability(), nil
}

// Detail loads a trip with seat stats, finance figures, bookings and expenses.
func (s TripService) Detail(ctx context.Context, id int64) (models.TripDetail, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return models.TripDetail{}, err
	}
	out := models.TripDetail{Trip: t.Trip, SeatStats: t.SeatStats}

	if out.Bookings, _, err = (repositories.BookingRepository{DB: s.db()}).List(ctx, repositories.BookingFilter{TripID: id}, domain.Pagination{}); err != nil {
		return out, err
	}
	if out.Expenses, err = (repositories.ExpenseRepository{DB: s.db()}).List(ctx, id); err != nil {
		return out, err
	}
	collected, err := (repositories.PaymentRepository{DB: s.db()}).SumForTrip(ctx, id)
	if err != nil {
		return out, err
	}
	expenses := decimal.Zero
	for _, e := range out.Expenses {
		expenses = expenses.Add(e.Amount)
	}
	out.TripFinance = models.TripFinance{
		ExpectedRevenue: t.PricePerPerson.Mul(decimal.NewFromInt(int64(t.BookedSeats))),
		TotalCollected:  collected,
		TotalExpenses:   expenses,
		NetProfit:       collected.Sub(expenses),
	}
	return out, nil
}

func (s TripService) List(ctx context.Context, status models.TripStatus, page domain.Pagination) (domain.Page[models.TripWithStats], error) {
	if status != "" && !status.Valid() {
		return domain.Page[models.TripWithStats]{}, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid status.", status)}
	}
	page = page.Normalize(TripPageSize)
	items, total, err := s.trips().List(ctx, status, page)
	if err != nil {
		return domain.Page[models.TripWithStats]{}, err
	}
	page.Total = total
	return domain.Page[models.TripWithStats]{Items: items, Pagination: page}, nil
}

// Bookable lists trips open for booking with at least one free seat.
func (s TripService) Bookable(ctx context.Context) ([]models.TripWithStats, error) {
	return s.trips().Bookable(ctx)
}
