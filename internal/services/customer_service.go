package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "hajjumrahflow/internal/config"
	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/storage"
	"hajjumrahflow/internal/utils"
)

const CustomerPageSize = 15

const (
	MsgDuplicatePhone    = "A customer with this phone number already exists."
	MsgDuplicatePassport = "A customer with this passport number already exists."
	MsgDuplicateEmail    = "A customer with this email already exists."
)

type CustomerService struct {
	DB        *sql.DB
	Store     storage.Store
	RequestID string
}

func (s CustomerService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s CustomerService) customers() repositories.CustomerRepository {
	return repositories.CustomerRepository{DB: s.db()}
}

func normalizeCustomer(in models.CustomerInput) models.CustomerInput {
	in.FullName = utils.NormalizeSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.PassportNumber = strings.TrimSpace(in.PassportNumber)
	in.Nationality = strings.TrimSpace(in.Nationality)
	return in
}

// checkUnique rejects phone, passport or email values held by another customer.
func (s CustomerService) checkUnique(ctx context.Context, in models.CustomerInput, excludeID int64) error {
	checks := []struct {
		column, value, code, msg string
	}{
		{"phone_number", in.PhoneNumber, "duplicate_phone", MsgDuplicatePhone},
		{"passport_number", in.PassportNumber, "duplicate_passport", MsgDuplicatePassport},
		{"email", in.Email, "duplicate_email", MsgDuplicateEmail},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		exists, err := s.customers().ExistsOther(ctx, c.column, c.value, excludeID)
		if err != nil {
			return domain.InternalError{Msg: "failed to check customer uniqueness", Err: err}
		}
		if exists {
			return domain.ValidationError{Field: c.column, Code: c.code, Msg: c.msg}
		}
	}
	return nil
}

// duplicateFromDB maps a unique-index violation that slipped past checkUnique.
func duplicateFromDB(err error) error {
	switch intdb.DuplicateKeyName(err) {
	case "uq_customers_phone":
		return domain.ValidationError{Field: "phone_number", Code: "duplicate_phone", Msg: MsgDuplicatePhone, Err: err}
	case "uq_customers_passport":
		return domain.ValidationError{Field: "passport_number", Code: "duplicate_passport", Msg: MsgDuplicatePassport, Err: err}
	case "uq_customers_email":
		return domain.ValidationError{Field: "email", Code: "duplicate_email", Msg: MsgDuplicateEmail, Err: err}
	}
	return domain.InternalError{Msg: "failed to save customer", Err: err}
}

func (s CustomerService) Create(ctx context.Context, actor domain.Actor, in models.CustomerInput) (models.Customer, error) {
	in = normalizeCustomer(in)
	if err := validateStruct(in); err != nil {
		return models.Customer{}, err
	}
	if err := s.checkUnique(ctx, in, 0); err != nil {
		return models.Customer{}, err
	}

	var createdBy *int64
	if actor.UserID > 0 {
		id := actor.UserID
		createdBy = &id
	}
	id, err := s.customers().Create(ctx, in, createdBy)
	if err != nil {
		return models.Customer{}, duplicateFromDB(err)
	}
	utils.LogEvent(s.RequestID, "customer", "create", fmt.Sprintf("customer_id=%d", id))
	return s.customers().GetByID(ctx, id)
}

func (s CustomerService) Update(ctx context.Context, id int64, in models.CustomerInput) (models.Customer, error) {
	if _, err := s.customers().GetByID(ctx, id); err != nil {
		return models.Customer{}, err
	}
	in = normalizeCustomer(in)
	if err := validateStruct(in); err != nil {
		return models.Customer{}, err
	}
	if err := s.checkUnique(ctx, in, id); err != nil {
		return models.Customer{}, err
	}
	if err := s.customers().Update(ctx, id, in); err != nil {
		if domain.IsNotFound(err) {
			return models.Customer{}, err
		}
		return models.Customer{}, duplicateFromDB(err)
	}
	utils.LogEvent(s.RequestID, "customer", "update", fmt.Sprintf("customer_id=%d", id))
	return s.customers().GetByID(ctx, id)
}

func (s CustomerService) Get(ctx context.Context, id int64) (models.Customer, error) {
	return s.customers().GetByID(ctx, id)
}

// Detail loads a customer with documents, communication logs and bookings.
func (s CustomerService) Detail(ctx context.Context, id int64) (models.CustomerDetail, error) {
	c, err := s.customers().GetByID(ctx, id)
	if err != nil {
		return models.CustomerDetail{}, err
	}
	out := models.CustomerDetail{Customer: c}

	if out.Documents, err = (repositories.DocumentRepository{DB: s.db()}).List(ctx, id); err != nil {
		return out, err
	}
	if out.Communications, _, err = (repositories.CommunicationRepository{DB: s.db()}).List(ctx, id, domain.Pagination{Page: 1, PageSize: 100}); err != nil {
		return out, err
	}
	if out.Bookings, _, err = (repositories.BookingRepository{DB: s.db()}).List(ctx, repositories.BookingFilter{CustomerID: id}, domain.Pagination{}); err != nil {
		return out, err
	}
	return out, nil
}

func (s CustomerService) List(ctx context.Context, q string, page domain.Pagination) (domain.Page[models.Customer], error) {
	page = page.Normalize(CustomerPageSize)
	items, total, err := s.customers().List(ctx, q, page)
	if err != nil {
		return domain.Page[models.Customer]{}, err
	}
	page.Total = total
	return domain.Page[models.Customer]{Items: items, Pagination: page}, nil
}

// Options lists every customer for select inputs.
func (s CustomerService) Options(ctx context.Context) ([]models.Customer, error) {
	return s.customers().Options(ctx)
}

// Delete removes the customer; rows cascade in the database and stored
// document files are removed best-effort afterwards.
func (s CustomerService) Delete(ctx context.Context, id int64) error {
	keys, err := repositories.DocumentRepository{DB: s.db()}.KeysByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if err := s.customers().Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "customer", "delete", fmt.Sprintf("customer_id=%d files=%d", id, len(keys)))
	if s.Store != nil {
		for _, k := range keys {
			if err := s.Store.Delete(ctx, k); err != nil {
				utils.LogFailure(s.RequestID, "customer", "delete_file", err)
			}
		}
	}
	return nil
}
