package handlers

import (
	"net/http"
	"strings"

	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Booking wizard state kept in the page session between steps.
const (
	wizardCustomerKey = "wizard_customer_id"
	wizardTripKey     = "wizard_trip_id"
)

// GET /bookings
func BookingsPage(c *gin.Context) {
	f := repositories.BookingFilter{Status: models.BookingStatus(strings.TrimSpace(c.Query("status")))}
	if !f.Status.Valid() {
		f.Status = ""
	}
	page, err := bookingService(c).List(c.Request.Context(), f, pagination(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "bookings.html", gin.H{
		"Title": "Bookings", "Page": page, "Status": string(f.Status), "Statuses": models.BookingStatuses(),
	})
}

// GET /bookings/:id
func BookingPage(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	detail, err := bookingService(c).Get(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "booking_detail.html", gin.H{"Title": "Booking #" + itoa(id), "Booking": detail})
}

// POST /bookings/:id/status
func BookingStatusSubmit(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	next := models.BookingStatus(strings.TrimSpace(c.PostForm("status")))
	b, err := bookingService(c).UpdateStatus(c.Request.Context(), id, next)
	switch {
	case err == nil:
		flash(c, "Booking is now "+b.Status.Label()+".")
	case formError(err):
		flash(c, err.Error())
	default:
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/bookings/"+itoa(id))
}

func renderPaymentForm(c *gin.Context, status int, detail models.BookingDetail, form paymentRequest, err error) {
	data := gin.H{"Title": "Add payment", "Booking": detail, "Form": form, "Methods": models.PaymentMethods()}
	if err != nil {
		data["Error"] = err.Error()
	}
	render(c, status, "payment_form.html", data)
}

// GET /bookings/:id/payment
func PaymentFormPage(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	detail, err := bookingService(c).Get(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	form := paymentRequest{
		AmountPaid:    detail.BalanceDue,
		PaymentDate:   utils.FormatDate(nowOf()),
		PaymentMethod: string(models.MethodCash),
	}
	renderPaymentForm(c, http.StatusOK, detail, form, nil)
}

// POST /bookings/:id/payment
func PaymentFormSubmit(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	_ = c.ShouldBind(&req)
	req.BookingID = id

	amount, err := formMoney("amount_paid", c.PostForm("amount_paid"))
	req.AmountPaid = amount
	if err == nil {
		var in models.PaymentInput
		if in, err = req.input(); err == nil {
			res, evs, rerr := paymentService(c).Record(c.Request.Context(), actor(c), in)
			if rerr == nil {
				notify(c, evs)
				flash(c, "Payment of "+utils.FormatMoney(res.Payment.AmountPaid)+" recorded.")
				c.Redirect(http.StatusFound, "/bookings/"+itoa(id))
				return
			}
			err = rerr
		}
	}
	if !formError(err) {
		renderPageError(c, err)
		return
	}
	detail, derr := bookingService(c).Get(c.Request.Context(), id)
	if derr != nil {
		renderPageError(c, derr)
		return
	}
	renderPaymentForm(c, http.StatusBadRequest, detail, req, err)
}

func wizardID(c *gin.Context, key string) int64 {
	id, _ := sessions.Default(c).Get(key).(int64)
	return id
}

func setWizard(c *gin.Context, key string, id int64) error {
	s := sessions.Default(c)
	s.Set(key, id)
	return s.Save()
}

// GET /bookings/new: step 1 picks the customer.
func WizardCustomerPage(c *gin.Context) {
	customers, err := customerService(c).Options(c.Request.Context())
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "wizard_customer.html", gin.H{
		"Title": "New booking", "Customers": customers, "Selected": wizardID(c, wizardCustomerKey),
	})
}

// POST /bookings/new
func WizardCustomerSubmit(c *gin.Context) {
	id, ok := pageID(c.PostForm("customer"))
	if ok {
		if _, err := customerService(c).Get(c.Request.Context(), id); err != nil {
			ok = false
		}
	}
	if !ok {
		flash(c, "Select a valid customer.")
		c.Redirect(http.StatusFound, "/bookings/new")
		return
	}
	if err := setWizard(c, wizardCustomerKey, id); err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/bookings/new/trip")
}

// GET /bookings/new/trip: step 2 picks a trip with free seats.
func WizardTripPage(c *gin.Context) {
	customerID := wizardID(c, wizardCustomerKey)
	if customerID == 0 {
		c.Redirect(http.StatusFound, "/bookings/new")
		return
	}
	cu, err := customerService(c).Get(c.Request.Context(), customerID)
	if err != nil {
		renderPageError(c, err)
		return
	}
	trips, err := tripService(c).Bookable(c.Request.Context())
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "wizard_trip.html", gin.H{
		"Title": "New booking", "Customer": cu, "Trips": trips, "Selected": wizardID(c, wizardTripKey),
	})
}

// POST /bookings/new/trip
func WizardTripSubmit(c *gin.Context) {
	id, ok := pageID(c.PostForm("trip"))
	if !ok {
		flash(c, "Select a trip.")
		c.Redirect(http.StatusFound, "/bookings/new/trip")
		return
	}
	if err := setWizard(c, wizardTripKey, id); err != nil {
		renderPageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/bookings/new/confirm")
}

func wizardParties(c *gin.Context) (models.Customer, models.TripWithStats, bool) {
	customerID, tripID := wizardID(c, wizardCustomerKey), wizardID(c, wizardTripKey)
	if customerID == 0 {
		c.Redirect(http.StatusFound, "/bookings/new")
		return models.Customer{}, models.TripWithStats{}, false
	}
	if tripID == 0 {
		c.Redirect(http.StatusFound, "/bookings/new/trip")
		return models.Customer{}, models.TripWithStats{}, false
	}
	cu, err := customerService(c).Get(c.Request.Context(), customerID)
	if err != nil {
		renderPageError(c, err)
		return models.Customer{}, models.TripWithStats{}, false
	}
	t, err := tripService(c).Get(c.Request.Context(), tripID)
	if err != nil {
		renderPageError(c, err)
		return models.Customer{}, models.TripWithStats{}, false
	}
	return cu, t, true
}

// GET /bookings/new/confirm: step 3 shows the summary.
func WizardConfirmPage(c *gin.Context) {
	cu, t, ok := wizardParties(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "wizard_confirm.html", gin.H{"Title": "New booking", "Customer": cu, "Trip": t})
}

// POST /bookings/new/confirm creates the booking and clears the wizard.
func WizardConfirmSubmit(c *gin.Context) {
	cu, t, ok := wizardParties(c)
	if !ok {
		return
	}
	in := models.BookingInput{CustomerID: cu.ID, TripID: t.ID}
	var err error
	if raw := strings.TrimSpace(c.PostForm("total_amount")); raw != "" {
		var amount decimal.Decimal
		if amount, err = formMoney("total_amount", raw); err == nil {
			in.TotalAmount = &amount
		}
	}
	if err == nil {
		b, events, cerr := bookingService(c).Create(c.Request.Context(), actor(c), in)
		if cerr == nil {
			notify(c, events)
			s := sessions.Default(c)
			s.Delete(wizardCustomerKey)
			s.Delete(wizardTripKey)
			s.AddFlash("Booking #" + itoa(b.ID) + " created for " + cu.FullName + ".")
			if serr := s.Save(); serr != nil {
				utils.LogFailure(middleware.GetRequestID(c), "pages", "wizard", serr)
			}
			c.Redirect(http.StatusFound, "/bookings/"+itoa(b.ID))
			return
		}
		err = cerr
	}
	if !formError(err) {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusBadRequest, "wizard_confirm.html", gin.H{
		"Title": "New booking", "Customer": cu, "Trip": t, "Error": err.Error(),
	})
}
