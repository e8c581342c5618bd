package handlers

import (
	"net/http"
	"strings"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// render adds the signed-in actor and pending flash messages to data.
func render(c *gin.Context, status int, name string, data gin.H) {
	data["Actor"] = actor(c)
	s := sessions.Default(c)
	if flashes := s.Flashes(); len(flashes) > 0 {
		data["Flashes"] = flashes
		if err := s.Save(); err != nil {
			utils.LogFailure(middleware.GetRequestID(c), "pages", "flash", err)
		}
	}
	c.HTML(status, name, data)
}

func flash(c *gin.Context, msg string) {
	s := sessions.Default(c)
	s.AddFlash(msg)
	if err := s.Save(); err != nil {
		utils.LogFailure(middleware.GetRequestID(c), "pages", "flash", err)
	}
}

// renderPageError shows the error page for lookups and permission failures.
func renderPageError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		render(c, http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": err.Error()})
	case domain.IsForbidden(err):
		render(c, http.StatusForbidden, "error.html", gin.H{"Title": "Permission denied", "Message": err.Error()})
	default:
		utils.LogFailure(middleware.GetRequestID(c), "pages", c.Request.Method+" "+c.FullPath(), err)
		render(c, http.StatusInternalServerError, "error.html", gin.H{"Title": "Server error", "Message": "A server error occurred."})
	}
}

// formError reports whether err belongs on the form rather than the error page.
func formError(err error) bool {
	return domain.IsValidation(err) || domain.IsConflict(err)
}

// PageCapability renders a 403 page for actors whose role lacks capability.
func PageCapability(capability domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actor(c).Role.Can(capability) {
			renderPageError(c, domain.ForbiddenError{})
			c.Abort()
			return
		}
		c.Next()
	}
}

func pagePathID(c *gin.Context, name string) (int64, bool) {
	id, ok := pageID(c.Param(name))
	if !ok {
		renderPageError(c, domain.NotFoundError{Resource: "page"})
	}
	return id, ok
}

// GET /login
func LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

// POST /login
func LoginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	u, err := authService(c).Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if !domain.IsUnauthorized(err) {
			utils.LogFailure(middleware.GetRequestID(c), "pages", "login", err)
		}
		render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Log in", "Username": username, "Error": "Please enter a correct username and password.",
		})
		return
	}
	s := sessions.Default(c)
	s.Clear()
	s.Set(middleware.SessionUserID, u.ID)
	s.Set(middleware.SessionRole, string(u.Role))
	if err := s.Save(); err != nil {
		renderPageError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", "username="+u.Username)

	next := c.Query("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// POST /logout
func Logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = s.Save()
	c.Redirect(http.StatusFound, "/login")
}

// GET /
func DashboardPage(c *gin.Context) {
	d, err := dashboardService(c).For(c.Request.Context(), actor(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Dashboard": d})
}

// GET /customers
func CustomersPage(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	page, err := customerService(c).List(c.Request.Context(), q, pagination(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "customers.html", gin.H{"Title": "Customers", "Query": q, "Page": page})
}

// GET /customers/:id
func CustomerPage(c *gin.Context) {
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	detail, err := customerService(c).Detail(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "customer_detail.html", gin.H{"Title": detail.FullName, "Customer": detail})
}

func customerForm(cu models.Customer) customerRequest {
	return customerRequest{
		FullName:           cu.FullName,
		PhoneNumber:        cu.PhoneNumber,
		Email:              cu.Email,
		PassportNumber:     cu.PassportNumber,
		PassportExpiryDate: utils.FormatDate(cu.PassportExpiryDate),
		Nationality:        cu.Nationality,
		DateOfBirth:        utils.FormatDate(cu.DateOfBirth),
	}
}

// GET /customers/new and /customers/:id/edit
func CustomerFormPage(c *gin.Context) {
	if c.Param("id") == "" {
		render(c, http.StatusOK, "customer_form.html", gin.H{"Title": "Add customer", "Form": customerRequest{}})
		return
	}
	id, ok := pagePathID(c, "id")
	if !ok {
		return
	}
	cu, err := customerService(c).Get(c.Request.Context(), id)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "customer_form.html", gin.H{"Title": "Edit " + cu.FullName, "Form": customerForm(cu)})
}

// POST /customers/new and /customers/:id/edit
func CustomerFormSubmit(c *gin.Context) {
	var req customerRequest
	_ = c.ShouldBind(&req)
	title := "Add customer"
	var id int64
	if c.Param("id") != "" {
		var ok bool
		if id, ok = pagePathID(c, "id"); !ok {
			return
		}
		title = "Edit customer"
	}

	in, err := req.input()
	var saved models.Customer
	if err == nil {
		if id == 0 {
			saved, err = customerService(c).Create(c.Request.Context(), actor(c), in)
		} else {
			saved, err = customerService(c).Update(c.Request.Context(), id, in)
		}
	}
	if err != nil {
		if !formError(err) {
			renderPageError(c, err)
			return
		}
		render(c, http.StatusBadRequest, "customer_form.html", gin.H{"Title": title, "Form": req, "Error": err.Error()})
		return
	}
	flash(c, "Customer "+saved.FullName+" saved.")
	c.Redirect(http.StatusFound, "/customers/"+itoa(saved.ID))
}
