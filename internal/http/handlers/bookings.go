package handlers

import (
	"net/http"
	"strings"

	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{RequestID: middleware.GetRequestID(c), Now: current().Now}
}

// GET /api/v1/bookings/bookings?status=&trip=&customer=&page=
func ListBookings(c *gin.Context) {
	var f repositories.BookingFilter
	f.Status = models.BookingStatus(strings.TrimSpace(c.Query("status")))
	if f.Status != "" && !f.Status.Valid() {
		respondError(c, http.StatusBadRequest, "invalid_choice", "status", "status: Select a valid choice.")
		return
	}
	var ok bool
	if f.TripID, ok = queryID(c, "trip"); !ok {
		return
	}
	if f.CustomerID, ok = queryID(c, "customer"); !ok {
		return
	}
	page, err := bookingService(c).List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/bookings/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := bookingService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// POST /api/v1/bookings/bookings
func CreateBooking(c *gin.Context) {
	var req models.BookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, events, err := bookingService(c).Create(c.Request.Context(), actor(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	notify(c, events)
	c.JSON(http.StatusCreated, b)
}

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
}

// PATCH /api/v1/bookings/bookings/:id/status
func UpdateBookingStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := bookingService(c).UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/v1/bookings/bookings/:id/add_payment
func AddBookingPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.BookingID = id
	recordPayment(c, req)
}
