package models

import "time"

type DocumentType string

const (
	DocPassportCopy  DocumentType = "passport_copy"
	DocPersonalPhoto DocumentType = "personal_photo"
	DocOther         DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocPassportCopy, DocPersonalPhoto, DocOther:
		return true
	}
	return false
}

func (t DocumentType) Label() string {
	switch t {
	case DocPassportCopy:
		return "Passport Copy"
	case DocPersonalPhoto:
		return "Personal Photo"
	default:
		return "Other"
	}
}

type DocumentStatus string

const (
	DocRequired DocumentStatus = "required"
	DocUploaded DocumentStatus = "uploaded"
	DocVerified DocumentStatus = "verified"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocRequired, DocUploaded, DocVerified:
		return true
	}
	return false
}

// Document is a file attached to a customer. FileKey addresses the blob in storage.
type Document struct {
	ID           int64          `json:"id"`
	CustomerID   int64          `json:"customer_id"`
	DocumentType DocumentType   `json:"document_type"`
	FileKey      string         `json:"file_key"`
	FileName     string         `json:"file_name"`
	Status       DocumentStatus `json:"status"`
	UploadedAt   time.Time      `json:"uploaded_at"`
}
