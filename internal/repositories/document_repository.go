package repositories

import (
	"context"
	"database/sql"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
)

type DocumentRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

func (r DocumentRepository) WithTx(tx *sql.Tx) DocumentRepository {
	r.tx = tx
	return r
}

const documentCols = `id, customer_id, document_type, file_key, file_name, status, uploaded_at`

func scanDocument(s scanner) (models.Document, error) {
	var d models.Document
	var typ, status string
	err := s.Scan(&d.ID, &d.CustomerID, &typ, &d.FileKey, &d.FileName, &status, &d.UploadedAt)
	d.DocumentType = models.DocumentType(typ)
	d.Status = models.DocumentStatus(status)
	return d, err
}

func (r DocumentRepository) GetByID(ctx context.Context, id int64) (models.Document, error) {
	d, err := scanDocument(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+documentCols+` FROM documents WHERE id=? LIMIT 1`, id))
	return d, notFound("document", err)
}

// List returns documents newest first, optionally for one customer (customerID > 0).
func (r DocumentRepository) List(ctx context.Context, customerID int64) ([]models.Document, error) {
	query := `SELECT ` + documentCols + ` FROM documents`
	var args []any
	if customerID > 0 {
		query += ` WHERE customer_id=?`
		args = append(args, customerID)
	}
	query += ` ORDER BY uploaded_at DESC, id DESC`

	rows, err := pick(r.DB, r.tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r DocumentRepository) Create(ctx context.Context, d models.Document) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO documents (customer_id, document_type, file_key, file_name, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.CustomerID, string(d.DocumentType), d.FileKey, d.FileName, string(d.Status), d.UploadedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r DocumentRepository) Update(ctx context.Context, id int64, typ models.DocumentType, status models.DocumentStatus) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `UPDATE documents SET document_type=?, status=? WHERE id=?`, string(typ), string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r DocumentRepository) Delete(ctx context.Context, id int64) error {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "document"}
	}
	return nil
}

// KeysByCustomer lists stored file keys of a customer, collected before a cascading delete.
func (r DocumentRepository) KeysByCustomer(ctx context.Context, customerID int64) ([]string, error) {
	rows, err := pick(r.DB, r.tx).QueryContext(ctx, `SELECT file_key FROM documents WHERE customer_id=?`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CountByCustomerStatus counts a customer's documents in a status.
func (r DocumentRepository) CountByCustomerStatus(ctx context.Context, customerID int64, status models.DocumentStatus) (int, error) {
	var n int
	err := pick(r.DB, r.tx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE customer_id=? AND status=?`, customerID, string(status)).Scan(&n)
	return n, err
}
