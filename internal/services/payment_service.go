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

const PaymentPageSize = 15

const (
	MsgPaymentAmount    = "Amount paid must be a positive number."
	MsgBookingCancelled = "Payments cannot be recorded against a cancelled booking."
)

type PaymentService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

// PaymentResult is a recorded payment together with the booking it updated.
type PaymentResult struct {
	Payment models.Payment `json:"payment"`
	Booking models.Booking `json:"booking"`
	Balance models.Balance `json:"balance"`
}

func (s PaymentService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s PaymentService) payments() repositories.PaymentRepository {
	return repositories.PaymentRepository{DB: s.db()}
}

// Record stores a payment and applies the payment rule to its booking inside
// one transaction: a balance at or below zero marks the booking fully_paid,
// otherwise a pending_payment booking becomes confirmed.
func (s PaymentService) Record(ctx context.Context, actor domain.Actor, in models.PaymentInput) (PaymentResult, []domain.Event, error) {
	// Stored at two decimals; a sub-cent amount would persist as zero.
	in.AmountPaid = in.AmountPaid.Round(2)
	if !in.AmountPaid.IsPositive() {
		return PaymentResult{}, nil, domain.ValidationError{Field: "amount_paid", Code: "invalid_amount", Msg: MsgPaymentAmount}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.MethodCash
	}
	if !in.PaymentMethod.Valid() {
		return PaymentResult{}, nil, domain.ValidationError{Field: "payment_method", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid choice.", in.PaymentMethod)}
	}
	now := nowOr(s.Now)
	if in.PaymentDate.IsZero() {
		in.PaymentDate = now
	}

	var res PaymentResult
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{}.WithTx(tx)
		b, err := bookings.GetForUpdate(ctx, in.BookingID)
		if err != nil {
			return err
		}
		if b.Status == models.StatusCancelled {
			return domain.ValidationError{Field: "booking", Code: "booking_cancelled", Msg: MsgBookingCancelled}
		}

		p := models.Payment{
			BookingID:     b.ID,
			AmountPaid:    in.AmountPaid,
			PaymentDate:   dateOf(in.PaymentDate),
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     now,
		}
		if actor.UserID > 0 {
			uid := actor.UserID
			p.RecordedBy = &uid
		}
		id, err := repositories.PaymentRepository{}.WithTx(tx).Create(ctx, p)
		if err != nil {
			return err
		}
		p.ID = id

		paid, err := bookings.AmountPaid(ctx, b.ID)
		if err != nil {
			return err
		}
		balance := models.NewBalance(b.TotalAmount, paid)
		if next := models.StatusAfterPayment(b.Status, balance.BalanceDue); next != b.Status {
			if err := bookings.UpdateStatus(ctx, b.ID, next); err != nil {
				return err
			}
			b.Status = next
		}
		res = PaymentResult{Payment: p, Booking: b, Balance: balance}
		return nil
	})
	if err != nil {
		return PaymentResult{}, nil, err
	}

	utils.LogEvent(s.RequestID, "payment", "record", fmt.Sprintf("payment_id=%d booking_id=%d amount=%s status=%s",
		res.Payment.ID, res.Booking.ID, res.Payment.AmountPaid.StringFixed(2), res.Booking.Status))
	return res, []domain.Event{domain.NewPaymentReceived(res.Payment.ID, res.Booking.ID, res.Booking.CustomerID, now)}, nil
}

func (s PaymentService) Get(ctx context.Context, id int64) (models.Payment, error) {
	return s.payments().GetByID(ctx, id)
}

func (s PaymentService) List(ctx context.Context, bookingID int64, page domain.Pagination) (domain.Page[models.Payment], error) {
	page = page.Normalize(PaymentPageSize)
	items, total, err := s.payments().List(ctx, bookingID, page)
	if err != nil {
		return domain.Page[models.Payment]{}, err
	}
	page.Total = total
	return domain.Page[models.Payment]{Items: items, Pagination: page}, nil
}
