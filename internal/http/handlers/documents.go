package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

func documentService(c *gin.Context) services.DocumentService {
	d := current()
	return services.DocumentService{Store: d.Store, RequestID: middleware.GetRequestID(c), Now: d.Now}
}

// GET /api/v1/crm/documents?customer=
func ListDocuments(c *gin.Context) {
	customerID, ok := queryID(c, "customer")
	if !ok {
		return
	}
	docs, err := documentService(c).List(c.Request.Context(), customerID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": docs})
}

// GET /api/v1/crm/documents/:id
func GetDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := documentService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// POST /api/v1/crm/documents (multipart: customer, document_type, status, file)
func UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxDocumentSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "required", "file", "file: No file was submitted.")
		return
	}
	customerID, _ := strconv.ParseInt(strings.TrimSpace(c.PostForm("customer")), 10, 64)

	f, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "The submitted file could not be read.", err)
		return
	}
	defer f.Close()

	doc, err := documentService(c).Upload(c.Request.Context(), services.UploadInput{
		CustomerID:   customerID,
		DocumentType: models.DocumentType(strings.TrimSpace(c.PostForm("document_type"))),
		Status:       models.DocumentStatus(strings.TrimSpace(c.PostForm("status"))),
		FileName:     fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         f,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

type documentPatch struct {
	DocumentType models.DocumentType   `json:"document_type"`
	Status       models.DocumentStatus `json:"status"`
}

// PATCH /api/v1/crm/documents/:id
func UpdateDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req documentPatch
	if !BindJSONOrError(c, &req) {
		return
	}
	doc, err := documentService(c).Update(c.Request.Context(), id, req.DocumentType, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DELETE /api/v1/crm/documents/:id
func DeleteDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := documentService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/crm/documents/:id/file
func DownloadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, rc, err := documentService(c).Open(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}
