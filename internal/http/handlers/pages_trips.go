package handlers

import (
	"net/http"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /trips
func TripsPage(c *gin.Context) {
	page, err := tripService(c).List(c.Request.Context(), "", pagination(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "trips.html", gin.H{"Title": "Trips", "Page": page})
}

// GET /trips/:id
func TripPage(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	detail, err := tripService(c).Detail(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "trip_detail.html", gin.H{"Title": detail.Name, "Trip": detail})
}

// GET /trips/:id/seats renders the availability fragment only.
func TripSeatsFragment(c *gin.Context) {
	id, ok := pageID(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	stats, err := tripService(c).Availability(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			c.Status(http.StatusNotFound)
			return
		}
		utils.LogFailure(middleware.GetRequestID(c), "pages", "seats", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.HTML(http.StatusOK, "seats.html", stats)
}

func tripForm(t models.Trip) tripRequest {
	return tripRequest{
		Name:           t.Name,
		Description:    t.Description,
		DepartureDate:  utils.FormatDate(t.DepartureDate),
		ReturnDate:     utils.FormatDate(t.ReturnDate),
		TotalSeats:     t.TotalSeats,
		PricePerPerson: t.PricePerPerson,
		Status:         string(t.Status),
		HotelDetails:   t.HotelDetails,
		FlightDetails:  t.FlightDetails,
	}
}

func renderTripForm(c *gin.Context, status int, title string, form tripRequest, err error) {
	data := gin.H{"Title": title, "Form": form, "Statuses": models.TripStatuses()}
	if err != nil {
		data["Error"] = err.Error()
	}
	render(c, status, "trip_form.html", data)
}

// GET /trips/new and /trips/:id/edit
func TripFormPage(c *gin.Context) {
	if c.Param("id") == "" {
		renderTripForm(c, http.StatusOK, "Add trip", tripRequest{Status: string(models.TripScheduled)}, nil)
		return
	}
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	t, err := tripService(c).Get(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	renderTripForm(c, http.StatusOK, "Edit "+t.Name, tripForm(t.Trip), nil)
}

// POST /trips/new and /trips/:id/edit
func TripFormSubmit(c *gin.Context) {
	var req tripRequest
	_ = c.ShouldBind(&req)
	title := "Add trip"
	var id int64
	if c.Param("id") != "" {
		var ok bool
		if id, ok = pagePathID(c, "id"); !ok {
			return
		}
		title = "Edit trip"
	}

	price, err := formMoney("price_per_person", c.PostForm("price_per_person"))
	req.PricePerPerson = price
	var saved models.Trip
	if err == nil {
		var in models.TripInput
		if in, err = req.input(); err == nil {
			if id == 0 {
				saved, err = tripService(c).Create(c.Request.Context(), in)
			} else {
				saved, err = tripService(c).Update(c.Request.Context(), id, in)
			}
		}
	}
	if err != nil {
		if !formError(err) {
			renderPageError(c, err)
			return
		}
		renderTripForm(c, http.StatusBadRequest, title, req, err)
		return
	}
	flash(c, "Trip "+saved.Name+" saved.")
	c.Redirect(http.StatusFound, "/trips/"+itoa(saved.ID))
}

// GET /trips/:id/expenses/new
func ExpenseFormPage(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	t, err := tripService(c).Get(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "expense_form.html", gin.H{"Title": "Add expense", "Trip": t, "Form": expenseRequest{}})
}

// POST /trips/:id/expenses/new
func ExpenseFormSubmit(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	t, err := tripService(c).Get(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	var req expenseRequest
	_ = c.ShouldBind(&req)
	req.TripID = id
	req.Amount, err = formMoney("amount", c.PostForm("amount"))
	if err == nil {
		var in models.ExpenseInput
		if in, err = req.input(); err == nil {
			_, err = expenseService(c).Create(c.Request.Context(), in)
		}
	}
	if err != nil {
		if !formError(err) {
			renderPageError(c, err)
			return
		}
		render(c, http.StatusBadRequest, "expense_form.html", gin.H{"Title": "Add expense", "Trip": t, "Form": req, "Error": err.Error()})
		return
	}
	flash(c, "Expense added.")
	c.Redirect(http.StatusFound, "/trips/"+itoa(id))
}
