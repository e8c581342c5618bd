package handlers

import (
	"net/http"

	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

func paymentService(c *gin.Context) services.PaymentService {
	return services.PaymentService{RequestID: middleware.GetRequestID(c), Now: current().Now}
}

func recordPayment(c *gin.Context, req paymentRequest) {
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, events, err := paymentService(c).Record(c.Request.Context(), actor(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	notify(c, events)
	c.JSON(http.StatusCreated, res)
}

// GET /api/v1/bookings/payments?booking=&page=
func ListPayments(c *gin.Context) {
	bookingID, ok := queryID(c, "booking")
	if !ok {
		return
	}
	page, err := paymentService(c).List(c.Request.Context(), bookingID, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/bookings/payments/:id
func GetPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := paymentService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/v1/bookings/payments
func CreatePayment(c *gin.Context) {
	var req paymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	recordPayment(c, req)
}
