package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "hajjumrahflow/internal/config"
	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"
)

const BookingPageSize = 15

const (
	MsgNoSeats         = "There are no available seats for this trip."
	MsgTripNotBookable = "This trip is not open for booking."
)

type BookingService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) bookings() repositories.BookingRepository {
	return repositories.BookingRepository{DB: s.db()}
}

// Create books a customer on a trip. The trip row is locked for the duration of
// the seat check and insert, so concurrent requests cannot both take the last seat.
func (s BookingService) Create(ctx context.Context, actor domain.Actor, in models.BookingInput) (models.Booking, []domain.Event, error) {
	if err := validateStruct(in); err != nil {
		return models.Booking{}, nil, err
	}
	if in.Status == "" {
		in.Status = models.StatusPendingDocuments
	}
	if !in.Status.Valid() || in.Status == models.StatusCancelled {
		return models.Booking{}, nil, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid initial status.", in.Status)}
	}
	if in.TotalAmount != nil {
		total := in.TotalAmount.Round(2)
		in.TotalAmount = &total
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		return models.Booking{}, nil, domain.ValidationError{Field: "total_amount", Code: "invalid_amount", Msg: "Total amount cannot be negative."}
	}

	now := nowOr(s.Now)
	var booking models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if _, err := (repositories.CustomerRepository{}).WithTx(tx).GetByID(ctx, in.CustomerID); err != nil {
			if domain.IsNotFound(err) {
				return domain.ValidationError{Field: "customer", Code: "does_not_exist", Msg: "Selected customer does not exist."}
			}
			return err
		}

		trips := repositories.TripRepository{}.WithTx(tx)
		trip, err := trips.GetForUpdate(ctx, in.TripID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.ValidationError{Field: "trip", Code: "does_not_exist", Msg: "Selected trip does not exist."}
			}
			return err
		}
		if !trip.Status.Bookable() {
			return domain.ValidationError{Field: "trip", Code: "trip_not_bookable", Msg: MsgTripNotBookable}
		}
		booked, err := trips.BookedSeats(ctx, trip.ID)
		if err != nil {
			return err
		}
		if models.NewSeatStats(trip.TotalSeats, booked).AvailableSeats <= 0 {
			return domain.ValidationError{Field: "trip", Code: "no_available_seats", Msg: MsgNoSeats}
		}

		booking = models.Booking{
			CustomerID:  in.CustomerID,
			TripID:      trip.ID,
			BookingDate: now,
			TotalAmount: trip.PricePerPerson,
			Status:      in.Status,
		}
		if in.TotalAmount != nil {
			booking.TotalAmount = *in.TotalAmount
		}
		if actor.UserID > 0 {
			uid := actor.UserID
			booking.CreatedBy = &uid
		}
		id, err := repositories.BookingRepository{}.WithTx(tx).Create(ctx, booking)
		if err != nil {
			return err
		}
		booking.ID = id
		return nil
	})
	if err != nil {
		return models.Booking{}, nil, err
	}

	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%d trip_id=%d customer_id=%d", booking.ID, booking.TripID, booking.CustomerID))
	return booking, []domain.Event{domain.NewBookingCreated(booking.ID, booking.CustomerID, booking.TripID, now)}, nil
}

// UpdateStatus applies a manual status change. Only transitions from the
// booking lifecycle are accepted; setting the current status is a no-op.
// Cancelling frees the seat because booked counts exclude cancelled bookings.
func (s BookingService) UpdateStatus(ctx context.Context, id int64, next models.BookingStatus) (models.Booking, error) {
	if !next.Valid() {
		return models.Booking{}, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid choice.", next)}
	}

	var booking models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.BookingRepository{}.WithTx(tx)
		b, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		booking = b
		if b.Status == next {
			return nil
		}
		if !b.Status.CanTransitionTo(next) {
			return domain.ValidationError{
				Field: "status",
				Code:  "invalid_transition",
				Msg:   fmt.Sprintf("Cannot change status from %s to %s.", b.Status.Label(), next.Label()),
			}
		}
		if err := repo.UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		booking.Status = next
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "update_status", fmt.Sprintf("booking_id=%d status=%s", id, booking.Status))
	return booking, nil
}

// Get loads a booking with customer, trip, payments and balance.
func (s BookingService) Get(ctx context.Context, id int64) (models.BookingDetail, error) {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return models.BookingDetail{}, err
	}
	out := models.BookingDetail{Booking: b}
	if out.Customer, err = (repositories.CustomerRepository{DB: s.db()}).GetByID(ctx, b.CustomerID); err != nil {
		return out, err
	}
	if out.Trip, err = (repositories.TripRepository{DB: s.db()}).GetByID(ctx, b.TripID); err != nil {
		return out, err
	}
	if out.Payments, _, err = (repositories.PaymentRepository{DB: s.db()}).List(ctx, id, domain.Pagination{}); err != nil {
		return out, err
	}
	paid, err := s.bookings().AmountPaid(ctx, id)
	if err != nil {
		return out, err
	}
	out.Balance = models.NewBalance(b.TotalAmount, paid)
	return out, nil
}

func (s BookingService) List(ctx context.Context, f repositories.BookingFilter, page domain.Pagination) (domain.Page[models.BookingSummary], error) {
	if f.Status != "" && !f.Status.Valid() {
		return domain.Page[models.BookingSummary]{}, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid choice.", f.Status)}
	}
	page = page.Normalize(BookingPageSize)
	items, total, err := s.bookings().List(ctx, f, page)
	if err != nil {
		return domain.Page[models.BookingSummary]{}, err
	}
	page.Total = total
	return domain.Page[models.BookingSummary]{Items: items, Pagination: page}, nil
}
