package api

import (
	"html/template"
	stdhttp "net/http"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	h "hajjumrahflow/internal/http/handlers"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/utils"
	"hajjumrahflow/internal/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "hajjflow_session"

func NewRouter(env intconfig.Env, tokens middleware.TokenParser) *gin.Engine {
	r := gin.New()

	store := cookie.NewStore([]byte(env.SecretKey))
	store.Options(sessions.Options{Path: "/", MaxAge: 60 * 60 * 12, HttpOnly: true, SameSite: stdhttp.SameSiteLaxMode, Secure: !env.Debug})

	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
		sessions.Sessions(sessionName, store),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogFailure("", "router", "trusted_proxies", err)
	}
	r.SetHTMLTemplate(template.Must(web.Templates()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/db-check", h.DBCheck)

	mountAPI(api.Group("/v1"), tokens, env.AssistantRatePerMinute)
	mountPages(r)

	h.SetRouter(r)
	return r
}

func mountAPI(v1 *gin.RouterGroup, tokens middleware.TokenParser, assistantRate int) {
	can := middleware.RequireCapability
	read := can(domain.CapViewRecords)

	v1.POST("/auth/token", h.IssueToken)

	authed := v1.Group("", middleware.Authenticate(tokens))
	authed.GET("/routes", can(domain.CapManageUsers), h.Routes)
	authed.GET("/users/me", h.Me)
	authed.GET("/users", can(domain.CapManageUsers), h.ListUsers)
	authed.GET("/users/:id", can(domain.CapManageUsers), h.GetUser)
	authed.GET("/dashboard", h.GetDashboard)

	crm := authed.Group("/crm")
	customers := crm.Group("/customers")
	customers.GET("", read, h.ListCustomers)
	customers.GET("/:id", read, h.GetCustomer)
	customers.POST("", can(domain.CapManageCustomers), h.CreateCustomer)
	customers.PUT("/:id", can(domain.CapManageCustomers), h.UpdateCustomer)

	documents := crm.Group("/documents")
	documents.GET("", read, h.ListDocuments)
	documents.GET("/:id", read, h.GetDocument)
	documents.GET("/:id/file", read, h.DownloadDocument)
	documents.POST("", can(domain.CapManageCustomers), h.UploadDocument)
	documents.PATCH("/:id", can(domain.CapManageCustomers), h.UpdateDocument)
	documents.DELETE("/:id", can(domain.CapManageCustomers), h.DeleteDocument)

	logs := crm.Group("/communication-logs")
	logs.GET("", read, h.ListCommunicationLogs)
	logs.GET("/:id", read, h.GetCommunicationLog)
	logs.POST("", can(domain.CapLogCommunications), h.CreateCommunicationLog)

	trips := authed.Group("/trips/trips")
	trips.GET("", read, h.ListTrips)
	trips.GET("/:id", read, h.GetTrip)
	trips.GET("/:id/availability", read, h.TripAvailability)
	trips.POST("", can(domain.CapManageTrips), h.CreateTrip)
	trips.PUT("/:id", can(domain.CapManageTrips), h.UpdateTrip)

	expenses := authed.Group("/trips/expenses", can(domain.CapManageExpenses))
	expenses.GET("", h.ListExpenses)
	expenses.GET("/:id", h.GetExpense)
	expenses.POST("", h.CreateExpense)
	expenses.PUT("/:id", h.UpdateExpense)
	expenses.DELETE("/:id", h.DeleteExpense)

	bookings := authed.Group("/bookings/bookings")
	bookings.GET("", read, h.ListBookings)
	bookings.GET("/:id", read, h.GetBooking)
	bookings.POST("", can(domain.CapManageBookings), h.CreateBooking)
	bookings.PATCH("/:id/status", can(domain.CapManageBookings), h.UpdateBookingStatus)
	bookings.POST("/:id/add_payment", can(domain.CapRecordPayments), h.AddBookingPayment)

	payments := authed.Group("/bookings/payments")
	payments.GET("", read, h.ListPayments)
	payments.GET("/:id", read, h.GetPayment)
	payments.POST("", can(domain.CapRecordPayments), h.CreatePayment)

	reports := authed.Group("/reports", can(domain.CapViewReports))
	reports.GET("/profitability/:trip_id", h.GetProfitability)
	reports.GET("/overdue", h.GetOverdue)
	reports.GET("/manifest/:trip_id", h.DownloadManifest)

	authed.POST("/assistant/ask", can(domain.CapUseAssistant), middleware.RateLimit(assistantRate), h.AskAssistant)
}

func mountPages(r *gin.Engine) {
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginSubmit)
	r.POST("/logout", h.Logout)

	can := h.PageCapability
	pages := r.Group("", middleware.RequireSession("/login"), can(domain.CapViewRecords))
	pages.GET("/", h.DashboardPage)

	pages.GET("/customers", h.CustomersPage)
	pages.GET("/customers/new", can(domain.CapManageCustomers), h.CustomerFormPage)
	pages.POST("/customers/new", can(domain.CapManageCustomers), h.CustomerFormSubmit)
	pages.GET("/customers/:id", h.CustomerPage)
	pages.GET("/customers/:id/edit", can(domain.CapManageCustomers), h.CustomerFormPage)
	pages.POST("/customers/:id/edit", can(domain.CapManageCustomers), h.CustomerFormSubmit)

	pages.GET("/trips", h.TripsPage)
	pages.GET("/trips/new", can(domain.CapManageTrips), h.TripFormPage)
	pages.POST("/trips/new", can(domain.CapManageTrips), h.TripFormSubmit)
	pages.GET("/trips/:id", h.TripPage)
	pages.GET("/trips/:id/seats", h.TripSeatsFragment)
	pages.GET("/trips/:id/edit", can(domain.CapManageTrips), h.TripFormPage)
	pages.POST("/trips/:id/edit", can(domain.CapManageTrips), h.TripFormSubmit)
	pages.GET("/trips/:id/expenses/new", can(domain.CapManageExpenses), h.ExpenseFormPage)
	pages.POST("/trips/:id/expenses/new", can(domain.CapManageExpenses), h.ExpenseFormSubmit)

	pages.GET("/bookings", h.BookingsPage)
	wizard := pages.Group("/bookings/new", can(domain.CapManageBookings))
	wizard.GET("", h.WizardCustomerPage)
	wizard.POST("", h.WizardCustomerSubmit)
	wizard.GET("/trip", h.WizardTripPage)
	wizard.POST("/trip", h.WizardTripSubmit)
	wizard.GET("/confirm", h.WizardConfirmPage)
	wizard.POST("/confirm", h.WizardConfirmSubmit)
	pages.GET("/bookings/:id", h.BookingPage)
	pages.POST("/bookings/:id/status", can(domain.CapManageBookings), h.BookingStatusSubmit)
	pages.GET("/bookings/:id/payment", can(domain.CapRecordPayments), h.PaymentFormPage)
	pages.POST("/bookings/:id/payment", can(domain.CapRecordPayments), h.PaymentFormSubmit)

	pages.GET("/reports", can(domain.CapViewReports), h.ReportsPage)
	pages.GET("/reports/manifest/:trip_id", can(domain.CapViewReports), h.DownloadManifest)
}
