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

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

const SeedPassword = "password123"

var seedTripNames = []string{
	"Umrah Rajab 2026",
	"Hajj Premium 2026",
	"Ramadan Special Umrah",
	"Winter Break Umrah",
	"Eid al-Fitr Umrah Package",
	"VIP Hajj Experience 2027",
	"Economy Umrah - Spring",
	"Family Umrah Package",
	"10-Day Umrah Express",
	"Umrah Plus Al-Aqsa 2026",
	"Spiritual Journey Hajj 2026",
	"Short Umrah Getaway",
	"Golden Age Umrah (55+)",
	"New Year Umrah",
	"Completed Hajj 2025",
}

var seedExpenseKinds = []string{"Hotel Booking", "Flight Tickets", "Transportation", "Visa Fees", "Catering"}

// seedCleanOrder deletes children before parents.
var seedCleanOrder = []string{"payments", "bookings", "expenses", "trips", "communication_logs", "documents", "customers"}

// SeedOptions sizes a seed run.
type SeedOptions struct {
	Customers int
	Bookings  int
	Seed      uint64
}

// SeedReport counts what a seed run created.
type SeedReport struct {
	Users     int
	Customers int
	Trips     int
	Bookings  int
	Payments  int
	Expenses  int
}

func (r SeedReport) String() string {
	return fmt.Sprintf("users=%d customers=%d trips=%d bookings=%d payments=%d expenses=%d",
		r.Users, r.Customers, r.Trips, r.Bookings, r.Payments, r.Expenses)
}

// Seeder wipes business data and refills it with fake records. Staff users are
// kept; the three demo users are created when missing.
type Seeder struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
}

func (s Seeder) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s Seeder) Run(ctx context.Context, opts SeedOptions) (SeedReport, error) {
	if opts.Customers <= 0 {
		opts.Customers = 250
	}
	if opts.Bookings <= 0 {
		opts.Bookings = 80
	}
	faker := gofakeit.New(opts.Seed)
	today := utils.StartOfDay(nowOr(s.Now))
	var rep SeedReport

	for _, table := range seedCleanOrder {
		if _, err := s.db().ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return rep, fmt.Errorf("clean %s: %w", table, err)
		}
	}
	utils.LogEvent(s.RequestID, "seed", "clean", strings.Join(seedCleanOrder, ","))

	staff, created, err := s.ensureUsers(ctx)
	if err != nil {
		return rep, err
	}
	rep.Users = created
	agentID := staff[domain.RoleAgent]
	recorders := []int64{staff[domain.RoleAgent], staff[domain.RoleAccountant]}

	customers, err := s.seedCustomers(ctx, faker, opts.Customers, today, agentID)
	if err != nil {
		return rep, err
	}
	rep.Customers = len(customers)

	trips, err := s.seedTrips(ctx, faker, today)
	if err != nil {
		return rep, err
	}
	rep.Trips = len(trips)

	bookings, payments, err := s.seedBookings(ctx, faker, opts.Bookings, today, customers, trips, agentID, recorders)
	if err != nil {
		return rep, err
	}
	rep.Bookings, rep.Payments = bookings, payments

	expenses := repositories.ExpenseRepository{DB: s.db()}
	for _, t := range trips {
		for i := faker.IntRange(2, 5); i > 0; i-- {
			_, err := expenses.Create(ctx, models.ExpenseInput{
				TripID:      t.ID,
				Description: faker.RandomString(seedExpenseKinds),
				Amount:      decimal.NewFromInt(int64(faker.IntRange(10, 40) * 500)),
				ExpenseDate: t.DepartureDate.AddDate(0, 0, -faker.IntRange(5, 20)),
			})
			if err != nil {
				return rep, fmt.Errorf("seed expense: %w", err)
			}
			rep.Expenses++
		}
	}

	utils.LogEvent(s.RequestID, "seed", "done", rep.String())
	return rep, nil
}

func (s Seeder) ensureUsers(ctx context.Context) (map[domain.Role]int64, int, error) {
	users := repositories.UserRepository{DB: s.db()}
	auth := AuthService{DB: s.db(), RequestID: s.RequestID, Now: s.Now}
	ids := map[domain.Role]int64{}
	created := 0
	for _, role := range domain.Roles() {
		name := string(role)
		u, err := users.GetByLogin(ctx, name)
		if err == nil {
			ids[role] = u.ID
			continue
		}
		if !domain.IsNotFound(err) {
			return nil, 0, err
		}
		u, err = auth.CreateUser(ctx, UserInput{
			Username:  name,
			Email:     name + "@hajjumrahflow.com",
			FirstName: role.Label(),
			LastName:  "User",
			Password:  SeedPassword,
			Role:      role,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("seed user %s: %w", name, err)
		}
		ids[role] = u.ID
		created++
	}
	return ids, created, nil
}

func (s Seeder) seedCustomers(ctx context.Context, faker *gofakeit.Faker, n int, today time.Time, createdBy int64) ([]int64, error) {
	repo := repositories.CustomerRepository{DB: s.db()}
	phones := map[string]bool{}
	passports := map[string]bool{}
	emails := map[string]bool{}
	ids := make([]int64, 0, n)

	for len(ids) < n {
		phone := faker.Numerify("+9665########")
		passport := strings.ToUpper(faker.Letter()) + faker.DigitN(9)
		email := strings.ToLower(faker.Email())
		if phones[phone] || passports[passport] || emails[email] {
			continue
		}
		phones[phone], passports[passport], emails[email] = true, true, true

		uid := createdBy
		id, err := repo.Create(ctx, models.CustomerInput{
			FullName:           faker.Name(),
			PhoneNumber:        phone,
			Email:              email,
			PassportNumber:     passport,
			PassportExpiryDate: today.AddDate(faker.IntRange(1, 10), 0, 0),
			Nationality:        faker.Country(),
			DateOfBirth:        today.AddDate(-faker.IntRange(18, 70), 0, -faker.IntRange(0, 364)),
		}, &uid)
		if err != nil {
			return nil, fmt.Errorf("seed customer: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s Seeder) seedTrips(ctx context.Context, faker *gofakeit.Faker, today time.Time) ([]models.Trip, error) {
	repo := repositories.TripRepository{DB: s.db()}
	out := make([]models.Trip, 0, len(seedTripNames))
	for i, name := range seedTripNames {
		in := models.TripInput{
			Name:           name,
			Description:    faker.Sentence(12),
			DepartureDate:  today.AddDate(0, 0, faker.IntRange(10, 365)),
			TotalSeats:     faker.IntRange(25, 100),
			PricePerPerson: decimal.NewFromInt(int64(faker.IntRange(15, 80) * 100)),
			Status:         models.TripScheduled,
			HotelDetails:   "5-star hotel near Haram: " + faker.Company(),
			FlightDetails:  fmt.Sprintf("Direct flight with %s Airlines", faker.Company()),
		}
		if faker.Bool() {
			in.Status = models.TripActive
		}
		if i == len(seedTripNames)-1 {
			in.Status = models.TripCompleted
			in.DepartureDate = today.AddDate(0, 0, -60)
		}
		in.ReturnDate = in.DepartureDate.AddDate(0, 0, faker.IntRange(10, 25))

		id, err := repo.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed trip: %w", err)
		}
		out = append(out, models.Trip{
			ID:             id,
			Name:           in.Name,
			DepartureDate:  in.DepartureDate,
			ReturnDate:     in.ReturnDate,
			TotalSeats:     in.TotalSeats,
			PricePerPerson: in.PricePerPerson,
			Status:         in.Status,
		})
	}
	return out, nil
}

func (s Seeder) seedBookings(ctx context.Context, faker *gofakeit.Faker, n int, today time.Time,
	customers []int64, trips []models.Trip, agentID int64, recorders []int64) (int, int, error) {
	if len(customers) == 0 || len(trips) == 0 {
		return 0, 0, nil
	}
	bookings := repositories.BookingRepository{DB: s.db()}
	payments := repositories.PaymentRepository{DB: s.db()}
	statuses := []models.BookingStatus{
		models.StatusPendingDocuments,
		models.StatusPendingPayment,
		models.StatusConfirmed,
		models.StatusFullyPaid,
	}
	methods := []models.PaymentMethod{models.MethodCash, models.MethodBankTransfer, models.MethodOnline}

	booked := map[int64]int{}
	pairs := map[[2]int64]bool{}
	made, paid := 0, 0
	for attempts := 0; made < n && attempts < n*20; attempts++ {
		trip := trips[faker.IntRange(0, len(trips)-1)]
		customer := customers[faker.IntRange(0, len(customers)-1)]
		key := [2]int64{customer, trip.ID}
		if pairs[key] || booked[trip.ID] >= trip.TotalSeats {
			continue
		}

		uid := agentID
		b := models.Booking{
			CustomerID:  customer,
			TripID:      trip.ID,
			CreatedBy:   &uid,
			BookingDate: today.AddDate(0, 0, -faker.IntRange(0, 60)),
			TotalAmount: trip.PricePerPerson,
			Status:      statuses[faker.IntRange(0, len(statuses)-1)],
		}
		id, err := bookings.Create(ctx, b)
		if err != nil {
			return made, paid, fmt.Errorf("seed booking: %w", err)
		}
		pairs[key] = true
		booked[trip.ID]++
		made++

		var amount decimal.Decimal
		switch b.Status {
		case models.StatusConfirmed:
			pct := decimal.NewFromInt(int64(faker.IntRange(20, 80))).Div(decimal.NewFromInt(100))
			amount = b.TotalAmount.Mul(pct).Round(2)
		case models.StatusFullyPaid:
			amount = b.TotalAmount
		default:
			continue
		}
		if !amount.IsPositive() {
			continue
		}
		recorder := recorders[faker.IntRange(0, len(recorders)-1)]
		_, err = payments.Create(ctx, models.Payment{
			BookingID:     id,
			AmountPaid:    amount,
			PaymentDate:   today.AddDate(0, 0, -faker.IntRange(1, 30)),
			PaymentMethod: methods[faker.IntRange(0, len(methods)-1)],
			RecordedBy:    &recorder,
		})
		if err != nil {
			return made, paid, fmt.Errorf("seed payment: %w", err)
		}
		paid++
	}
	return made, paid, nil
}
