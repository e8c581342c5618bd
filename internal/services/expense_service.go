package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"
)

const MsgExpenseAmount = "Amount must be a positive number."

type ExpenseService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

func (s ExpenseService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ExpenseService) expenses() repositories.ExpenseRepository {
	return repositories.ExpenseRepository{DB: s.db()}
}

func (s ExpenseService) validate(ctx context.Context, in models.ExpenseInput) (models.ExpenseInput, error) {
	in.Description = utils.NormalizeSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return in, err
	}
	in.Amount = in.Amount.Round(2)
	if !in.Amount.IsPositive() {
		return in, domain.ValidationError{Field: "amount", Code: "invalid_amount", Msg: MsgExpenseAmount}
	}
	if in.ExpenseDate.IsZero() {
		in.ExpenseDate = dateOf(nowOr(s.Now))
	}
	if _, err := (repositories.TripRepository{DB: s.db()}).GetByID(ctx, in.TripID); err != nil {
		if domain.IsNotFound(err) {
			return in, domain.ValidationError{Field: "trip", Code: "does_not_exist", Msg: "Selected trip does not exist."}
		}
		return in, err
	}
	return in, nil
}

func (s ExpenseService) Create(ctx context.Context, in models.ExpenseInput) (models.Expense, error) {
	in, err := s.validate(ctx, in)
	if err != nil {
		return models.Expense{}, err
	}
	id, err := s.expenses().Create(ctx, in)
	if err != nil {
		return models.Expense{}, err
	}
	utils.LogEvent(s.RequestID, "expense", "create", fmt.Sprintf("expense_id=%d trip_id=%d amount=%s", id, in.TripID, in.Amount.StringFixed(2)))
	return s.expenses().GetByID(ctx, id)
}

func (s ExpenseService) Update(ctx context.Context, id int64, in models.ExpenseInput) (models.Expense, error) {
	current, err := s.expenses().GetByID(ctx, id)
	if err != nil {
		return models.Expense{}, err
	}
	if in.TripID == 0 {
		in.TripID = current.TripID
	}
	in, err = s.validate(ctx, in)
	if err != nil {
		return models.Expense{}, err
	}
	if err := s.expenses().Update(ctx, id, in); err != nil {
		return models.Expense{}, err
	}
	utils.LogEvent(s.RequestID, "expense", "update", fmt.Sprintf("expense_id=%d", id))
	return s.expenses().GetByID(ctx, id)
}

func (s ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.expenses().Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "expense", "delete", fmt.Sprintf("expense_id=%d", id))
	return nil
}

func (s ExpenseService) Get(ctx context.Context, id int64) (models.Expense, error) {
	return s.expenses().GetByID(ctx, id)
}

func (s ExpenseService) List(ctx context.Context, tripID int64) ([]models.Expense, error) {
	return s.expenses().List(ctx, tripID)
}
