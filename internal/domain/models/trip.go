package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TripStatus string

const (
	TripScheduled TripStatus = "scheduled"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

func TripStatuses() []TripStatus {
	return []TripStatus{TripScheduled, TripActive, TripCompleted, TripCancelled}
}

func (s TripStatus) Valid() bool {
	switch s {
	case TripScheduled, TripActive, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Bookable reports whether new bookings may be taken on a trip in this status.
func (s TripStatus) Bookable() bool {
	return s == TripScheduled || s == TripActive
}

type Trip struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	DepartureDate  time.Time       `json:"departure_date"`
	ReturnDate     time.Time       `json:"return_date"`
	TotalSeats     int             `json:"total_seats"`
	PricePerPerson decimal.Decimal `json:"price_per_person"`
	Status         TripStatus      `json:"status"`
	HotelDetails   string          `json:"hotel_details"`
	FlightDetails  string          `json:"flight_details"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TripInput is the writable part of a trip.
type TripInput struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Description    string          `json:"description"`
	DepartureDate  time.Time       `json:"departure_date" validate:"required"`
	ReturnDate     time.Time       `json:"return_date" validate:"required"`
	TotalSeats     int             `json:"total_seats"`
	PricePerPerson decimal.Decimal `json:"price_per_person"`
	Status         TripStatus      `json:"status"`
	HotelDetails   string          `json:"hotel_details"`
	FlightDetails  string          `json:"flight_details"`
}

// SeatStats are the derived seat figures of a trip.
// BookedSeats counts non-cancelled bookings only. The capacity itself lives on
// Trip.TotalSeats so both can be embedded side by side.
type SeatStats struct {
	BookedSeats    int     `json:"booked_seats"`
	AvailableSeats int     `json:"available_seats"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}

// NewSeatStats derives availability and occupancy from total and booked.
func NewSeatStats(total, booked int) SeatStats {
	st := SeatStats{
		BookedSeats:    booked,
		AvailableSeats: total - booked,
	}
	if total > 0 {
		st.OccupancyRate = float64(booked) / float64(total) * 100
	}
	return st
}

// Capacity is booked plus available seats.
func (s SeatStats) Capacity() int {
	return s.BookedSeats + s.AvailableSeats
}

// RoundedOccupancy is the occupancy rate at two decimal places.
func (s SeatStats) RoundedOccupancy() float64 {
	f, _ := decimal.NewFromFloat(s.OccupancyRate).Round(2).Float64()
	return f
}

// TripFinance aggregates money flowing through a trip.
type TripFinance struct {
	ExpectedRevenue decimal.Decimal `json:"expected_revenue"`
	TotalCollected  decimal.Decimal `json:"total_collected"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	NetProfit       decimal.Decimal `json:"net_profit"`
}

// TripWithStats is a trip plus its derived figures.
type TripWithStats struct {
	Trip
	SeatStats
}

// TripAvailability is the seat view of a single trip.
type TripAvailability struct {
	TripID     int64 `json:"trip_id"`
	TotalSeats int   `json:"total_seats"`
	SeatStats
}

// Availability narrows the trip to its seat figures.
func (t TripWithStats) Availability() TripAvailability {
	return TripAvailability{TripID: t.ID, TotalSeats: t.TotalSeats, SeatStats: t.SeatStats}
}

// TripDetail is the full trip view: stats, finance, bookings and expenses.
type TripDetail struct {
	Trip
	SeatStats
	TripFinance
	Bookings []BookingSummary `json:"bookings"`
	Expenses []Expense        `json:"expenses"`
}

func (t TripDetail) Availability() TripAvailability {
	return TripAvailability{TripID: t.ID, TotalSeats: t.TotalSeats, SeatStats: t.SeatStats}
}
