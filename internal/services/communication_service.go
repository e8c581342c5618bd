package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"
)

const CommunicationPageSize = 50

type CommunicationInput struct {
	CustomerID  int64                 `json:"customer" validate:"required,gt=0"`
	Channel     models.Channel        `json:"channel" validate:"required"`
	Direction   models.Direction      `json:"direction"`
	Content     string                `json:"content" validate:"required"`
	Status      models.DeliveryStatus `json:"status" validate:"required"`
	TriggeredBy string                `json:"triggered_by" validate:"max=100"`
}

type CommunicationService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

func (s CommunicationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s CommunicationService) logs() repositories.CommunicationRepository {
	return repositories.CommunicationRepository{DB: s.db()}
}

// Create appends a log entry, typically posted by the automation platform.
func (s CommunicationService) Create(ctx context.Context, in CommunicationInput) (models.CommunicationLog, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.TriggeredBy = strings.TrimSpace(in.TriggeredBy)
	if in.Direction == "" {
		in.Direction = models.DirectionOutgoing
	}
	if err := validateStruct(in); err != nil {
		return models.CommunicationLog{}, err
	}
	if !in.Channel.Valid() {
		return models.CommunicationLog{}, domain.ValidationError{Field: "channel", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid channel.", in.Channel)}
	}
	if !in.Direction.Valid() {
		return models.CommunicationLog{}, domain.ValidationError{Field: "direction", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid direction.", in.Direction)}
	}
	if !in.Status.Valid() {
		return models.CommunicationLog{}, domain.ValidationError{Field: "status", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid status.", in.Status)}
	}
	if _, err := (repositories.CustomerRepository{DB: s.db()}).GetByID(ctx, in.CustomerID); err != nil {
		if domain.IsNotFound(err) {
			return models.CommunicationLog{}, domain.ValidationError{Field: "customer", Code: "does_not_exist", Msg: "Selected customer does not exist."}
		}
		return models.CommunicationLog{}, err
	}

	l := models.CommunicationLog{
		CustomerID:  in.CustomerID,
		Channel:     in.Channel,
		Direction:   in.Direction,
		Content:     in.Content,
		Status:      in.Status,
		TriggeredBy: in.TriggeredBy,
		CreatedAt:   nowOr(s.Now),
	}
	id, err := s.logs().Create(ctx, l)
	if err != nil {
		return models.CommunicationLog{}, err
	}
	l.ID = id
	utils.LogEvent(s.RequestID, "communication", "create", fmt.Sprintf("log_id=%d customer_id=%d channel=%s", id, l.CustomerID, l.Channel))
	return l, nil
}

func (s CommunicationService) Get(ctx context.Context, id int64) (models.CommunicationLog, error) {
	return s.logs().GetByID(ctx, id)
}

func (s CommunicationService) List(ctx context.Context, customerID int64, page domain.Pagination) (domain.Page[models.CommunicationLog], error) {
	page = page.Normalize(CommunicationPageSize)
	items, total, err := s.logs().List(ctx, customerID, page)
	if err != nil {
		return domain.Page[models.CommunicationLog]{}, err
	}
	page.Total = total
	return domain.Page[models.CommunicationLog]{Items: items, Pagination: page}, nil
}
