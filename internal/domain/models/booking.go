package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPendingDocuments BookingStatus = "pending_documents"
	StatusPendingPayment   BookingStatus = "pending_payment"
	StatusConfirmed        BookingStatus = "confirmed"
	StatusFullyPaid        BookingStatus = "fully_paid"
	StatusCancelled        BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingDocuments: {StatusPendingPayment, StatusCancelled},
	StatusPendingPayment:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed:        {StatusFullyPaid, StatusCancelled},
	StatusFullyPaid:        {StatusCancelled},
	StatusCancelled:        nil,
}

// BookingStatuses lists every status in lifecycle order.
func BookingStatuses() []BookingStatus {
	return []BookingStatus{StatusPendingDocuments, StatusPendingPayment, StatusConfirmed, StatusFullyPaid, StatusCancelled}
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether a manual status change is allowed.
// Keeping the current status is always allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextTransitions lists the statuses reachable from s.
func (s BookingStatus) NextTransitions() []BookingStatus {
	return append([]BookingStatus(nil), bookingTransitions[s]...)
}

func (s BookingStatus) Label() string {
	switch s {
	case StatusPendingDocuments:
		return "Pending Documents"
	case StatusPendingPayment:
		return "Pending Payment"
	case StatusConfirmed:
		return "Confirmed"
	case StatusFullyPaid:
		return "Fully Paid"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// StatusAfterPayment applies the payment rule: a settled balance forces
// fully_paid, otherwise pending_payment advances to confirmed.
func StatusAfterPayment(current BookingStatus, balanceDue decimal.Decimal) BookingStatus {
	if current == StatusCancelled {
		return current
	}
	if balanceDue.LessThanOrEqual(decimal.Zero) {
		return StatusFullyPaid
	}
	if current == StatusPendingPayment {
		return StatusConfirmed
	}
	return current
}

type Booking struct {
	ID                 int64           `json:"id"`
	CustomerID         int64           `json:"customer"`
	TripID             int64           `json:"trip"`
	CreatedBy          *int64          `json:"created_by"`
	BookingDate        time.Time       `json:"booking_date"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Status             BookingStatus   `json:"status"`
	LastReminderSentAt *time.Time      `json:"last_reminder_sent_at"`
}

// BookingInput creates a booking. A nil TotalAmount means the trip price; an
// empty Status means pending_documents.
type BookingInput struct {
	CustomerID  int64            `json:"customer" validate:"required,gt=0"`
	TripID      int64            `json:"trip" validate:"required,gt=0"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Status      BookingStatus    `json:"status"`
}

// Balance holds the payment-derived figures of a booking.
type Balance struct {
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

func NewBalance(total, paid decimal.Decimal) Balance {
	return Balance{AmountPaid: paid, BalanceDue: total.Sub(paid)}
}

// BookingSummary is a booking row joined with customer and trip names.
type BookingSummary struct {
	Booking
	Balance
	CustomerName     string    `json:"customer_name"`
	CustomerPassport string    `json:"customer_passport,omitempty"`
	TripName         string    `json:"trip_name"`
	TripDeparture    time.Time `json:"trip_departure"`
}

// BookingDetail is a booking with its parties and payment history.
type BookingDetail struct {
	Booking
	Balance
	Customer Customer  `json:"customer_detail"`
	Trip     Trip      `json:"trip_detail"`
	Payments []Payment `json:"payments"`
}
