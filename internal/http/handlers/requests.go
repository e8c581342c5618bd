package handlers

import (
	"strings"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/utils"

	"github.com/shopspring/decimal"
)

// Request bodies carry dates as strings so "2026-01-31" and RFC3339 both work.

type customerRequest struct {
	FullName           string `json:"full_name" form:"full_name"`
	PhoneNumber        string `json:"phone_number" form:"phone_number"`
	Email              string `json:"email" form:"email"`
	PassportNumber     string `json:"passport_number" form:"passport_number"`
	PassportExpiryDate string `json:"passport_expiry_date" form:"passport_expiry_date"`
	Nationality        string `json:"nationality" form:"nationality"`
	DateOfBirth        string `json:"date_of_birth" form:"date_of_birth"`
}

func parseDateField(field, raw string, required bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return time.Time{}, domain.ValidationError{Field: field, Code: "required", Msg: field + ": This field is required."}
		}
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		if t, err = utils.ParseDateTime(raw); err != nil {
			return time.Time{}, domain.ValidationError{Field: field, Code: "invalid", Msg: field + ": Enter a valid date.", Err: err}
		}
	}
	return t, nil
}

func parseDateTimeField(field, raw string, required bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return time.Time{}, domain.ValidationError{Field: field, Code: "required", Msg: field + ": This field is required."}
		}
		return time.Time{}, nil
	}
	t, err := utils.ParseDateTime(raw)
	if err != nil {
		if t, err = utils.ParseDate(raw); err != nil {
			return time.Time{}, domain.ValidationError{Field: field, Code: "invalid", Msg: field + ": Enter a valid date/time.", Err: err}
		}
	}
	return t, nil
}

func (r customerRequest) input() (models.CustomerInput, error) {
	expiry, err := parseDateField("passport_expiry_date", r.PassportExpiryDate, true)
	if err != nil {
		return models.CustomerInput{}, err
	}
	dob, err := parseDateField("date_of_birth", r.DateOfBirth, true)
	if err != nil {
		return models.CustomerInput{}, err
	}
	return models.CustomerInput{
		FullName:           r.FullName,
		PhoneNumber:        r.PhoneNumber,
		Email:              r.Email,
		PassportNumber:     r.PassportNumber,
		PassportExpiryDate: expiry,
		Nationality:        r.Nationality,
		DateOfBirth:        dob,
	}, nil
}

type tripRequest struct {
	Name           string          `json:"name" form:"name"`
	Description    string          `json:"description" form:"description"`
	DepartureDate  string          `json:"departure_date" form:"departure_date"`
	ReturnDate     string          `json:"return_date" form:"return_date"`
	TotalSeats     int             `json:"total_seats" form:"total_seats"`
	PricePerPerson decimal.Decimal `json:"price_per_person" form:"-"`
	Status         string          `json:"status" form:"status"`
	HotelDetails   string          `json:"hotel_details" form:"hotel_details"`
	FlightDetails  string          `json:"flight_details" form:"flight_details"`
}

func (r tripRequest) input() (models.TripInput, error) {
	dep, err := parseDateTimeField("departure_date", r.DepartureDate, true)
	if err != nil {
		return models.TripInput{}, err
	}
	ret, err := parseDateTimeField("return_date", r.ReturnDate, true)
	if err != nil {
		return models.TripInput{}, err
	}
	return models.TripInput{
		Name:           r.Name,
		Description:    r.Description,
		DepartureDate:  dep,
		ReturnDate:     ret,
		TotalSeats:     r.TotalSeats,
		PricePerPerson: r.PricePerPerson,
		Status:         models.TripStatus(strings.TrimSpace(r.Status)),
		HotelDetails:   r.HotelDetails,
		FlightDetails:  r.FlightDetails,
	}, nil
}

type expenseRequest struct {
	TripID      int64           `json:"trip" form:"-"`
	Description string          `json:"description" form:"description"`
	Amount      decimal.Decimal `json:"amount" form:"-"`
	ExpenseDate string          `json:"expense_date" form:"expense_date"`
}

func (r expenseRequest) input() (models.ExpenseInput, error) {
	d, err := parseDateField("expense_date", r.ExpenseDate, false)
	if err != nil {
		return models.ExpenseInput{}, err
	}
	return models.ExpenseInput{TripID: r.TripID, Description: r.Description, Amount: r.Amount, ExpenseDate: d}, nil
}

type paymentRequest struct {
	BookingID     int64           `json:"booking" form:"-"`
	AmountPaid    decimal.Decimal `json:"amount_paid" form:"-"`
	PaymentDate   string          `json:"payment_date" form:"payment_date"`
	PaymentMethod string          `json:"payment_method" form:"payment_method"`
}

func (r paymentRequest) input() (models.PaymentInput, error) {
	d, err := parseDateField("payment_date", r.PaymentDate, false)
	if err != nil {
		return models.PaymentInput{}, err
	}
	return models.PaymentInput{
		BookingID:     r.BookingID,
		AmountPaid:    r.AmountPaid,
		PaymentDate:   d,
		PaymentMethod: models.PaymentMethod(strings.TrimSpace(r.PaymentMethod)),
	}, nil
}

// formMoney reads a money field from a posted form.
func formMoney(field, raw string) (decimal.Decimal, error) {
	d, err := utils.ParseMoney(raw)
	if err != nil {
		return decimal.Zero, domain.ValidationError{Field: field, Code: "invalid", Msg: field + ": Enter a number.", Err: err}
	}
	return d, nil
}
