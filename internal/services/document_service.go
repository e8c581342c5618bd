package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/storage"
	"hajjumrahflow/internal/utils"
)

// MaxDocumentSize caps a single uploaded file.
const MaxDocumentSize = 10 << 20

type DocumentService struct {
	DB        *sql.DB
	Store     storage.Store
	RequestID string
	Now       func() time.Time
}

type UploadInput struct {
	CustomerID   int64
	DocumentType models.DocumentType
	Status       models.DocumentStatus
	FileName     string
	ContentType  string
	Size         int64
	Body         io.Reader
}

func (s DocumentService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s DocumentService) docs() repositories.DocumentRepository {
	return repositories.DocumentRepository{DB: s.db()}
}

func (s DocumentService) Upload(ctx context.Context, in UploadInput) (models.Document, error) {
	if in.CustomerID <= 0 {
		return models.Document{}, domain.ValidationError{Field: "customer", Code: "required", Msg: "customer: This field is required."}
	}
	if in.Status == "" {
		in.Status = models.DocUploaded
	}
	if !in.DocumentType.Valid() {
		return models.Document{}, domain.ValidationError{Field: "document_type", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid document type.", in.DocumentType)}
	}
	if !in.Status.Valid() {
		return models.Document{}, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid status.", in.Status)}
	}
	if in.Body == nil || strings.TrimSpace(in.FileName) == "" {
		return models.Document{}, domain.ValidationError{Field: "file", Code: "required", Msg: "No file was submitted."}
	}
	if in.Size > MaxDocumentSize {
		return models.Document{}, domain.ValidationError{Field: "file", Code: "file_too_large", Msg: "The uploaded file is too large."}
	}
	if _, err := (repositories.CustomerRepository{DB: s.db()}).GetByID(ctx, in.CustomerID); err != nil {
		if domain.IsNotFound(err) {
			return models.Document{}, domain.ValidationError{Field: "customer", Code: "does_not_exist", Msg: "Selected customer does not exist."}
		}
		return models.Document{}, err
	}
	if s.Store == nil {
		return models.Document{}, domain.InternalError{Msg: "document storage is not configured"}
	}

	now := nowOr(s.Now)
	key := storage.NewKey(in.FileName, now)
	if err := s.Store.Put(ctx, key, in.Body, in.ContentType); err != nil {
		return models.Document{}, domain.InternalError{Msg: "failed to store file", Err: err}
	}

	doc := models.Document{
		CustomerID:   in.CustomerID,
		DocumentType: in.DocumentType,
		FileKey:      key,
		FileName:     in.FileName,
		Status:       in.Status,
		UploadedAt:   now,
	}
	id, err := s.docs().Create(ctx, doc)
	if err != nil {
		if derr := s.Store.Delete(ctx, key); derr != nil {
			utils.LogFailure(s.RequestID, "document", "cleanup", derr)
		}
		return models.Document{}, err
	}
	doc.ID = id
	utils.LogEvent(s.RequestID, "document", "upload", fmt.Sprintf("document_id=%d customer_id=%d", id, in.CustomerID))
	return doc, nil
}

func (s DocumentService) Get(ctx context.Context, id int64) (models.Document, error) {
	return s.docs().GetByID(ctx, id)
}

func (s DocumentService) List(ctx context.Context, customerID int64) ([]models.Document, error) {
	return s.docs().List(ctx, customerID)
}

// Update changes type and/or status; empty values keep the current ones.
func (s DocumentService) Update(ctx context.Context, id int64, typ models.DocumentType, status models.DocumentStatus) (models.Document, error) {
	doc, err := s.docs().GetByID(ctx, id)
	if err != nil {
		return models.Document{}, err
	}
	if typ == "" {
		typ = doc.DocumentType
	}
	if status == "" {
		status = doc.Status
	}
	if !typ.Valid() {
		return models.Document{}, domain.ValidationError{Field: "document_type", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid document type.", typ)}
	}
	if !status.Valid() {
		return models.Document{}, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid status.", status)}
	}
	if err := s.docs().Update(ctx, id, typ, status); err != nil {
		return models.Document{}, err
	}
	doc.DocumentType = typ
	doc.Status = status
	utils.LogEvent(s.RequestID, "document", "update", fmt.Sprintf("document_id=%d status=%s", id, status))
	return doc, nil
}

// Delete removes the row, then the stored file best-effort.
func (s DocumentService) Delete(ctx context.Context, id int64) error {
	doc, err := s.docs().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs().Delete(ctx, id); err != nil {
		return err
	}
	if s.Store != nil {
		if err := s.Store.Delete(ctx, doc.FileKey); err != nil {
			utils.LogFailure(s.RequestID, "document", "delete_file", err)
		}
	}
	utils.LogEvent(s.RequestID, "document", "delete", fmt.Sprintf("document_id=%d", id))
	return nil
}

// Open streams the stored file of a document.
func (s DocumentService) Open(ctx context.Context, id int64) (models.Document, io.ReadCloser, error) {
	doc, err := s.docs().GetByID(ctx, id)
	if err != nil {
		return models.Document{}, nil, err
	}
	if s.Store == nil {
		return doc, nil, domain.InternalError{Msg: "document storage is not configured"}
	}
	rc, err := s.Store.Open(ctx, doc.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return doc, nil, domain.NotFoundError{Resource: "document file", Err: err}
		}
		return doc, nil, err
	}
	return doc, rc, nil
}
