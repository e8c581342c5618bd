package handlers

import (
	"net/http"
	"strings"

	"hajjumrahflow/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type askRequest struct {
	Question string `json:"question"`
}

// POST /api/v1/assistant/ask
// Upstream failures come back as 200 with a readable answer.
func AskAssistant(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid JSON in request body.", nil)
		return
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		RespondError(c, http.StatusBadRequest, "No question provided.", nil)
		return
	}
	answer := current().Assistant.Ask(c.Request.Context(), middleware.GetRequestID(c), q)
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
