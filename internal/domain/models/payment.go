package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOnline       PaymentMethod = "online"
)

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodBankTransfer, MethodOnline}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodOnline:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case MethodCash:
		return "Cash"
	case MethodBankTransfer:
		return "Bank Transfer"
	case MethodOnline:
		return "Online"
	default:
		return string(m)
	}
}

type Payment struct {
	ID            int64           `json:"id"`
	BookingID     int64           `json:"booking"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	RecordedBy    *int64          `json:"recorded_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentInput is what a caller supplies to record a payment.
// A zero PaymentDate means today; an empty method means cash.
type PaymentInput struct {
	BookingID     int64           `json:"booking"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}
