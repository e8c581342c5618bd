package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hajjumrahflow/internal/domain"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeParser map[string]domain.Actor

func (f fakeParser) ParseToken(raw string) (domain.Actor, error) {
	a, ok := f[raw]
	if !ok {
		return domain.Actor{}, domain.UnauthorizedError{Msg: "Given token not valid for any token type"}
	}
	return a, nil
}

var tokens = fakeParser{
	"manager-token":    {UserID: 1, Role: domain.RoleManager},
	"accountant-token": {UserID: 4, Role: domain.RoleAccountant},
}

func guarded(capability domain.Capability) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", Authenticate(tokens), RequireCapability(capability), func(c *gin.Context) {
		a, _ := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": a.UserID})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := guarded(domain.CapViewRecords)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/x", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/x", "Token manager-token").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/x", "Bearer nope").Code)

	w := get(r, "/x", "Bearer manager-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":1}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequireCapability(t *testing.T) {
	r := guarded(domain.CapManageTrips)
	w := get(r, "/x", "Bearer accountant-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "permission_denied")

	assert.Equal(t, http.StatusOK, get(r, "/x", "Bearer manager-token").Code)
}

func TestSessionLogin(t *testing.T) {
	r := gin.New()
	r.Use(sessions.Sessions("s", cookie.NewStore([]byte("k"))))
	r.GET("/login-as-agent", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(SessionUserID, int64(2))
		s.Set(SessionRole, string(domain.RoleAgent))
		require.NoError(t, s.Save())
		c.Status(http.StatusNoContent)
	})
	r.GET("/api", Authenticate(tokens), func(c *gin.Context) {
		a, _ := GetActor(c)
		c.String(http.StatusOK, string(a.Role))
	})
	r.GET("/page", RequireSession("/login"), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := get(r, "/page", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fpage", w.Header().Get("Location"))

	login := get(r, "/login-as-agent", "")
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	for _, path := range []string{"/api", "/page"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRateLimitPerUser(t *testing.T) {
	r := gin.New()
	r.GET("/ask", Authenticate(tokens), RateLimit(2), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/ask", "Bearer manager-token").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ask", "Bearer manager-token").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ask", "Bearer manager-token").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ask", "Bearer accountant-token").Code)
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://office.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://office.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://office.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
