package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func reportService(c *gin.Context) services.ReportService {
	return services.ReportService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/v1/reports/profitability/:trip_id
func GetProfitability(c *gin.Context) {
	tripID, ok := pathID(c, "trip_id")
	if !ok {
		return
	}
	p, err := reportService(c).Profitability(c.Request.Context(), tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/v1/reports/overdue
func GetOverdue(c *gin.Context) {
	items, err := reportService(c).Overdue(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// GET /api/v1/reports/manifest/:trip_id?format=pdf|excel
func DownloadManifest(c *gin.Context) {
	tripID, ok := pathID(c, "trip_id")
	if !ok {
		return
	}
	svc := reportService(c)
	var (
		data []byte
		name string
		mime string
		err  error
	)
	switch strings.ToLower(c.DefaultQuery("format", "pdf")) {
	case "pdf":
		data, name, err = svc.ManifestPDF(c.Request.Context(), tripID)
		mime = mimePDF
	case "excel", "xlsx":
		data, name, err = svc.ManifestXLSX(c.Request.Context(), tripID)
		mime = mimeXLSX
	default:
		respondError(c, http.StatusBadRequest, "invalid_choice", "format", "format: Select pdf or excel.")
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, mime, data)
}
