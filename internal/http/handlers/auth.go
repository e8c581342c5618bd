package handlers

import (
	"net/http"

	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func authService(c *gin.Context) services.AuthService {
	s := current().Auth
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// POST /api/v1/auth/token
func IssueToken(c *gin.Context) {
	var req tokenRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := authService(c).Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/v1/users
func ListUsers(c *gin.Context) {
	users, err := authService(c).ListUsers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": users})
}

// GET /api/v1/users/:id
func GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := authService(c).GetUser(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/v1/users/me
func Me(c *gin.Context) {
	u, err := authService(c).GetUser(c.Request.Context(), actor(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         u,
		"role_label":   u.Role.Label(),
		"capabilities": u.Role.Capabilities(),
	})
}
