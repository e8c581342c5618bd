package handlers

import (
	"net/http"

	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

func communicationService(c *gin.Context) services.CommunicationService {
	return services.CommunicationService{RequestID: middleware.GetRequestID(c), Now: current().Now}
}

// GET /api/v1/crm/communication-logs?customer=&page=
func ListCommunicationLogs(c *gin.Context) {
	customerID, ok := queryID(c, "customer")
	if !ok {
		return
	}
	page, err := communicationService(c).List(c.Request.Context(), customerID, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/crm/communication-logs/:id
func GetCommunicationLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	l, err := communicationService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /api/v1/crm/communication-logs
func CreateCommunicationLog(c *gin.Context) {
	var req services.CommunicationInput
	if !BindJSONOrError(c, &req) {
		return
	}
	l, err := communicationService(c).Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}
