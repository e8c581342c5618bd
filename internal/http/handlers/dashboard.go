package handlers

import (
	"net/http"

	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

func dashboardService(c *gin.Context) services.DashboardService {
	return services.DashboardService{RequestID: middleware.GetRequestID(c), Now: current().Now}
}

// GET /api/v1/dashboard
func GetDashboard(c *gin.Context) {
	d, err := dashboardService(c).For(c.Request.Context(), actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
