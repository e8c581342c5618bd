package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	auth := services.AuthService{Secret: []byte("test-secret")}
	return NewRouter(intconfig.Env{SecretKey: "test-secret", Debug: true}, auth), auth
}

func bearer(t *testing.T, auth services.AuthService, id int64, role domain.Role) string {
	t.Helper()
	token, _, err := auth.IssueToken(models.User{ID: id, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAPIRequiresAuthentication(t *testing.T) {
	r, _ := testRouter(t)
	for _, path := range []string{"/api/v1/crm/customers", "/api/v1/dashboard", "/api/v1/reports/overdue"} {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, path, "").Code, path)
	}
}

func TestRolePermissions(t *testing.T) {
	r, auth := testRouter(t)
	accountant := bearer(t, auth, 4, domain.RoleAccountant)
	agent := bearer(t, auth, 2, domain.RoleAgent)

	cases := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/api/v1/trips/trips", accountant},
		{http.MethodPost, "/api/v1/crm/customers", accountant},
		{http.MethodPost, "/api/v1/bookings/bookings", accountant},
		{http.MethodGet, "/api/v1/reports/overdue", agent},
		{http.MethodGet, "/api/v1/trips/expenses", agent},
		{http.MethodGet, "/api/v1/users", agent},
	}
	for _, tc := range cases {
		assert.Equal(t, http.StatusForbidden, do(r, tc.method, tc.path, tc.token).Code, tc.method+" "+tc.path)
	}
}

func TestLoginPageRenders(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="password"`)
}

func TestPagesRedirectToLogin(t *testing.T) {
	r, _ := testRouter(t)
	w := do(r, http.MethodGet, "/bookings/new", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/bookings/new"), w.Header().Get("Location"))
}

func TestUnknownRoute(t *testing.T) {
	r, _ := testRouter(t)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/nope", "").Code)
}
