package handlers

import (
	"net/http"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /reports?trip=
func ReportsPage(c *gin.Context) {
	ctx := c.Request.Context()
	trips, err := tripService(c).List(ctx, "", domain.Pagination{Page: 1, PageSize: 100})
	if err != nil {
		renderPageError(c, err)
		return
	}
	overdue, err := reportService(c).Overdue(ctx)
	if err != nil {
		renderPageError(c, err)
		return
	}
	data := gin.H{"Title": "Reports", "Trips": trips.Items, "Overdue": overdue}

	tripID, _ := pageID(c.Query("trip"))
	if tripID == 0 && len(trips.Items) > 0 {
		tripID = trips.Items[0].ID
	}
	if tripID != 0 {
		var p services.Profitability
		if p, err = reportService(c).Profitability(ctx, tripID); err != nil {
			renderPageError(c, err)
			return
		}
		data["Profitability"] = p
	}
	data["TripID"] = tripID
	render(c, http.StatusOK, "reports.html", data)
}
