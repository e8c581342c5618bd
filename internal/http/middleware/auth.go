package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"hajjumrahflow/internal/domain"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Session keys written by the login page.
const (
	SessionUserID = "user_id"
	SessionRole   = "role"
)

// TokenParser turns a bearer token into the actor it names.
type TokenParser interface {
	ParseToken(raw string) (domain.Actor, error)
}

func SetActor(c *gin.Context, a domain.Actor) {
	c.Set(actorKey, a)
}

func GetActor(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	a, ok := v.(domain.Actor)
	return a, ok
}

// actorFromSession reads a logged-in page session when the sessions middleware is mounted.
func actorFromSession(c *gin.Context) (domain.Actor, bool) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return domain.Actor{}, false
	}
	s := sessions.Default(c)
	id, _ := s.Get(SessionUserID).(int64)
	role, _ := s.Get(SessionRole).(string)
	if id <= 0 || !domain.Role(role).Valid() {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: id, Role: domain.Role(role)}, true
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}

// Authenticate accepts "Authorization: Bearer <jwt>" or a page session.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h := c.GetHeader("Authorization"); h != "" {
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				abortJSON(c, http.StatusUnauthorized, "not_authenticated", "Invalid authorization header.")
				return
			}
			actor, err := parser.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				abortJSON(c, http.StatusUnauthorized, "not_authenticated", err.Error())
				return
			}
			SetActor(c, actor)
			c.Next()
			return
		}
		if actor, ok := actorFromSession(c); ok {
			SetActor(c, actor)
			c.Next()
			return
		}
		abortJSON(c, http.StatusUnauthorized, "not_authenticated", domain.UnauthorizedError{}.Error())
	}
}

// RequireCapability rejects actors whose role lacks capability.
func RequireCapability(capability domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "not_authenticated", domain.UnauthorizedError{}.Error())
			return
		}
		if !actor.Role.Can(capability) {
			abortJSON(c, http.StatusForbidden, "permission_denied", domain.ForbiddenError{}.Error())
			return
		}
		c.Next()
	}
}

// RequireSession sends visitors without a page session to loginPath.
func RequireSession(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromSession(c)
		if !ok {
			c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		SetActor(c, actor)
		c.Next()
	}
}
