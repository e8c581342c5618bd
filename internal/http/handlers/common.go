package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hajjumrahflow/internal/assistant"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/notifier"
	"hajjumrahflow/internal/services"
	"hajjumrahflow/internal/storage"
	"hajjumrahflow/internal/utils"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators handlers share. The database is intconfig.DB.
type Deps struct {
	Store     storage.Store
	Notifier  notifier.Notifier
	Assistant assistant.Assistant
	Auth      services.AuthService
	Now       func() time.Time
}

var (
	depsMu sync.RWMutex
	deps   = Deps{Notifier: notifier.Discard{}}
)

// Configure installs the shared collaborators; call it before serving.
func Configure(d Deps) {
	if d.Notifier == nil {
		d.Notifier = notifier.Discard{}
	}
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func current() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

func nowOf() time.Time {
	if now := current().Now; now != nil {
		return now()
	}
	return utils.NowUTC()
}

// notify hands events to the notifier after the response is decided.
// Delivery failures are logged by the notifier and never surface here.
func notify(c *gin.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	current().Notifier.Notify(c.Request.Context(), middleware.GetRequestID(c), events)
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"error":      message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["details"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "Request body is empty.", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid JSON in request body.", err)
		return false
	}
	return true
}

func actor(c *gin.Context) domain.Actor {
	a, _ := middleware.GetActor(c)
	return a
}

// pathID parses :id (or another param) and answers 404 when it is not a positive integer.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, ok := pageID(c.Param(name))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", "", "Not found.")
	}
	return id, ok
}

func pageID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// queryID reads an optional positive integer filter; zero means absent.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid", name, "Select a valid choice.")
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) domain.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return domain.Pagination{Page: page, PageSize: size}
}
