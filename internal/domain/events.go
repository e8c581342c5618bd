package domain

import "time"

// EventKind identifies a domain event that may trigger outbound notifications.
type EventKind string

const (
	EventBookingCreated         EventKind = "booking.created"
	EventPaymentReceived        EventKind = "payment.received"
	EventBookingPaymentReminder EventKind = "booking.payment_reminder"
)

// Event is returned by write operations; delivery is the notifier's job.
type Event struct {
	Kind       EventKind
	Payload    map[string]any
	OccurredAt time.Time
}

func NewBookingCreated(bookingID, customerID, tripID int64, at time.Time) Event {
	return Event{
		Kind: EventBookingCreated,
		Payload: map[string]any{
			"booking_id":  bookingID,
			"customer_id": customerID,
			"trip_id":     tripID,
		},
		OccurredAt: at,
	}
}

func NewPaymentReceived(paymentID, bookingID, customerID int64, at time.Time) Event {
	return Event{
		Kind: EventPaymentReceived,
		Payload: map[string]any{
			"payment_id":  paymentID,
			"booking_id":  bookingID,
			"customer_id": customerID,
		},
		OccurredAt: at,
	}
}

func NewPaymentReminder(bookingID, customerID, tripID int64, at time.Time) Event {
	return Event{
		Kind: EventBookingPaymentReminder,
		Payload: map[string]any{
			"booking_id":  bookingID,
			"customer_id": customerID,
			"trip_id":     tripID,
		},
		OccurredAt: at,
	}
}
