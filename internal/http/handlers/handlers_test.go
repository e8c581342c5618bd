package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hajjumrahflow/internal/assistant"
	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/http/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, events []domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

// useMockDB points the shared connection at sqlmock for one test.
func useMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	prev := intconfig.DB
	intconfig.DB = db
	t.Cleanup(func() {
		intconfig.DB = prev
		db.Close()
	})
	return mock
}

func useDeps(t *testing.T, d Deps) {
	t.Helper()
	if d.Now == nil {
		d.Now = func() time.Time { return fixedNow }
	}
	prev := current()
	Configure(d)
	t.Cleanup(func() { Configure(prev) })
}

// serve runs one request through a bare engine acting as the given user.
func serve(method, route, path, body string, as domain.Actor, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		middleware.SetActor(c, as)
		c.Next()
	})
	r.Handle(method, route, h)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var (
	manager    = domain.Actor{UserID: 1, Role: domain.RoleManager}
	accountant = domain.Actor{UserID: 4, Role: domain.RoleAccountant}
)

func TestAskAssistantValidatesBody(t *testing.T) {
	useDeps(t, Deps{Assistant: assistant.New(assistant.Config{})})

	w := serve(http.MethodPost, "/ask", "/ask", `{"question":`, manager, AskAssistant)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON in request body.")

	w = serve(http.MethodPost, "/ask", "/ask", `{"question":"   "}`, manager, AskAssistant)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No question provided.")

	w = serve(http.MethodPost, "/ask", "/ask", `{"question":"What is ihram?"}`, manager, AskAssistant)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"`+assistant.MsgNotConfigured+`"}`, w.Body.String())
}

func TestGetCustomerNotFound(t *testing.T) {
	mock := useMockDB(t)
	useDeps(t, Deps{})
	mock.ExpectQuery(`FROM customers WHERE id=\?`).WithArgs(int64(42)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := serve(http.MethodGet, "/customers/:id", "/customers/42", "", manager, GetCustomer)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"not_found"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidPathIDIsNotFound(t *testing.T) {
	w := serve(http.MethodGet, "/trips/:id", "/trips/abc", "", manager, GetTrip)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePaymentRejectsZeroAmount(t *testing.T) {
	useDeps(t, Deps{})
	w := serve(http.MethodPost, "/payments", "/payments", `{"booking":11,"amount_paid":"0"}`, accountant, CreatePayment)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"amount_paid"`)
	assert.Contains(t, w.Body.String(), "Amount paid must be a positive number.")
}

func TestAddPaymentConfirmsBookingAndNotifies(t *testing.T) {
	mock := useMockDB(t)
	n := &recordingNotifier{}
	useDeps(t, Deps{Notifier: n})

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings b WHERE b.id=\? FOR UPDATE`).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "trip_id", "created_by", "booking_date", "total_amount", "status", "last_reminder_sent_at"}).
			AddRow(11, 7, 3, 2, fixedNow, "5000.00", "pending_payment", nil))
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(int64(11), sqlmock.AnyArg(), sqlmock.AnyArg(), "bank_transfer", int64(4)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_paid\),0\) FROM payments WHERE booking_id=\?`).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("2000.00"))
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).WithArgs("confirmed", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := serve(http.MethodPost, "/bookings/:id/add_payment", "/bookings/11/add_payment",
		`{"amount_paid":"2000","payment_method":"bank_transfer","payment_date":"2026-03-11"}`, accountant, AddBookingPayment)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)
	assert.Contains(t, w.Body.String(), `"balance_due":"3000"`)
	require.Len(t, n.events, 1)
	assert.Equal(t, domain.EventPaymentReceived, n.events[0].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDownloadManifestRejectsUnknownFormat(t *testing.T) {
	w := serve(http.MethodGet, "/manifest/:trip_id", "/manifest/3?format=csv", "", manager, DownloadManifest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"format"`)
}

func TestListTripsRejectsUnknownStatus(t *testing.T) {
	w := serve(http.MethodGet, "/trips", "/trips?status=boarding", "", manager, ListTrips)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeListsCapabilities(t *testing.T) {
	mock := useMockDB(t)
	useDeps(t, Deps{})
	mock.ExpectQuery(`FROM users WHERE id=\?`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "first_name", "last_name", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow(4, "accountant", "accountant@hajjumrahflow.com", "Accountant", "User", "x", "accountant", true, fixedNow, fixedNow))

	w := serve(http.MethodGet, "/users/me", "/users/me", "", accountant, Me)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"record_payments"`)
	assert.NotContains(t, w.Body.String(), `"manage_trips"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRespondDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ValidationError{Field: "x", Code: "invalid", Msg: "bad"}, http.StatusBadRequest},
		{domain.NotFoundError{Resource: "trip"}, http.StatusNotFound},
		{domain.ConflictError{Msg: "busy"}, http.StatusConflict},
		{domain.UnauthorizedError{}, http.StatusUnauthorized},
		{domain.ForbiddenError{}, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := serve(http.MethodGet, "/e", "/e", "", manager, func(c *gin.Context) { RespondDomainError(c, tc.err) })
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}
