package repositories

import (
	"context"
	"database/sql"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
)

type CommunicationRepository struct {
	DB *sql.DB
	tx *sql.Tx
}

const commCols = `id, customer_id, channel, direction, content, status, triggered_by, created_at`

func scanComm(s scanner) (models.CommunicationLog, error) {
	var l models.CommunicationLog
	var ch, dir, st string
	err := s.Scan(&l.ID, &l.CustomerID, &ch, &dir, &l.Content, &st, &l.TriggeredBy, &l.CreatedAt)
	l.Channel = models.Channel(ch)
	l.Direction = models.Direction(dir)
	l.Status = models.DeliveryStatus(st)
	return l, err
}

func (r CommunicationRepository) GetByID(ctx context.Context, id int64) (models.CommunicationLog, error) {
	l, err := scanComm(pick(r.DB, r.tx).QueryRowContext(ctx, `SELECT `+commCols+` FROM communication_logs WHERE id=? LIMIT 1`, id))
	return l, notFound("communication log", err)
}

// List returns logs newest first, optionally for one customer.
func (r CommunicationRepository) List(ctx context.Context, customerID int64, page domain.Pagination) ([]models.CommunicationLog, int, error) {
	where := ""
	var args []any
	if customerID > 0 {
		where = ` WHERE customer_id=?`
		args = append(args, customerID)
	}
	conn := pick(r.DB, r.tx)

	var total int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM communication_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page)
	rows, err := conn.QueryContext(ctx, `SELECT `+commCols+` FROM communication_logs`+where+
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.CommunicationLog{}
	for rows.Next() {
		l, err := scanComm(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r CommunicationRepository) Create(ctx context.Context, l models.CommunicationLog) (int64, error) {
	res, err := pick(r.DB, r.tx).ExecContext(ctx, `
		INSERT INTO communication_logs (customer_id, channel, direction, content, status, triggered_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.CustomerID, string(l.Channel), string(l.Direction), l.Content, string(l.Status), l.TriggeredBy, l.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
