package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a cost line item of a trip.
type Expense struct {
	ID          int64           `json:"id"`
	TripID      int64           `json:"trip"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ExpenseInput struct {
	TripID      int64           `json:"trip"`
	Description string          `json:"description" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
}
