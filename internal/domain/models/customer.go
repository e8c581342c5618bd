package models

import "time"

// Customer is a pilgrim record. Phone and passport are unique case-insensitively.
type Customer struct {
	ID                 int64     `json:"id"`
	FullName           string    `json:"full_name"`
	PhoneNumber        string    `json:"phone_number"`
	Email              string    `json:"email,omitempty"`
	PassportNumber     string    `json:"passport_number"`
	PassportExpiryDate time.Time `json:"passport_expiry_date"`
	Nationality        string    `json:"nationality"`
	DateOfBirth        time.Time `json:"date_of_birth"`
	CreatedBy          *int64    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CustomerInput is the writable part of a customer.
type CustomerInput struct {
	FullName           string    `json:"full_name" validate:"required,max=255"`
	PhoneNumber        string    `json:"phone_number" validate:"required,max=20"`
	Email              string    `json:"email" validate:"omitempty,email,max=254"`
	PassportNumber     string    `json:"passport_number" validate:"required,max=50"`
	PassportExpiryDate time.Time `json:"passport_expiry_date" validate:"required"`
	Nationality        string    `json:"nationality" validate:"required,max=100"`
	DateOfBirth        time.Time `json:"date_of_birth" validate:"required"`
}

// CustomerDetail is a customer with everything attached to it.
type CustomerDetail struct {
	Customer
	Documents      []Document         `json:"documents"`
	Communications []CommunicationLog `json:"communication_logs"`
	Bookings       []BookingSummary   `json:"bookings"`
}
