package db

import (
	"context"
	"database/sql"
	"fmt"

	"hajjumrahflow/internal/utils"
)

type table struct {
	name string
	ddl  string
}

// Tables are created in dependency order.
var tables = []table{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(150) NOT NULL,
	email VARCHAR(254) NOT NULL DEFAULT '',
	first_name VARCHAR(150) NOT NULL DEFAULT '',
	last_name VARCHAR(150) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'agent',
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_users_username (username),
	CONSTRAINT chk_users_role CHECK (role IN ('manager','agent','accountant'))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"customers", `
CREATE TABLE IF NOT EXISTS customers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	full_name VARCHAR(255) NOT NULL,
	phone_number VARCHAR(20) NOT NULL,
	email VARCHAR(254) NULL,
	passport_number VARCHAR(50) NOT NULL,
	passport_expiry_date DATE NOT NULL,
	nationality VARCHAR(100) NOT NULL,
	date_of_birth DATE NOT NULL,
	created_by BIGINT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_customers_phone (phone_number),
	UNIQUE KEY uq_customers_passport (passport_number),
	UNIQUE KEY uq_customers_email (email),
	CONSTRAINT fk_customers_created_by FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"documents", `
CREATE TABLE IF NOT EXISTS documents (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	customer_id BIGINT NOT NULL,
	document_type VARCHAR(20) NOT NULL,
	file_key VARCHAR(255) NOT NULL,
	file_name VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'uploaded',
	uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_documents_customer (customer_id),
	CONSTRAINT fk_documents_customer FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"communication_logs", `
CREATE TABLE IF NOT EXISTS communication_logs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	customer_id BIGINT NOT NULL,
	channel VARCHAR(10) NOT NULL,
	direction VARCHAR(10) NOT NULL DEFAULT 'outgoing',
	content TEXT NOT NULL,
	status VARCHAR(10) NOT NULL,
	triggered_by VARCHAR(100) NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_comm_customer (customer_id, created_at),
	CONSTRAINT fk_comm_customer FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	departure_date DATETIME NOT NULL,
	return_date DATETIME NOT NULL,
	total_seats INT UNSIGNED NOT NULL,
	price_per_person DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
	hotel_details TEXT NOT NULL,
	flight_details TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_trips_departure (departure_date),
	CONSTRAINT chk_trips_dates CHECK (return_date > departure_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"expenses", `
CREATE TABLE IF NOT EXISTS expenses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	description VARCHAR(255) NOT NULL,
	amount DECIMAL(10,2) NOT NULL,
	expense_date DATE NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_expenses_trip (trip_id),
	CONSTRAINT fk_expenses_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	customer_id BIGINT NOT NULL,
	trip_id BIGINT NOT NULL,
	created_by BIGINT NULL,
	booking_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	total_amount DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending_documents',
	last_reminder_sent_at DATETIME NULL,
	KEY idx_bookings_trip_status (trip_id, status),
	KEY idx_bookings_status (status),
	CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE,
	CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE,
	CONSTRAINT fk_bookings_created_by FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"payments", `
CREATE TABLE IF NOT EXISTS payments (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	amount_paid DECIMAL(10,2) NOT NULL,
	payment_date DATE NOT NULL,
	payment_method VARCHAR(20) NOT NULL DEFAULT 'cash',
	recorded_by BIGINT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_payments_booking (booking_id),
	KEY idx_payments_date (payment_date),
	CONSTRAINT fk_payments_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
	CONSTRAINT fk_payments_recorded_by FOREIGN KEY (recorded_by) REFERENCES users(id) ON DELETE SET NULL,
	CONSTRAINT chk_payments_amount CHECK (amount_paid > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

type column struct {
	table, name, ddl string
}

// Columns added after the first release; applied when missing.
var upgrades = []column{
	{"bookings", "last_reminder_sent_at", "ALTER TABLE bookings ADD COLUMN last_reminder_sent_at DATETIME NULL"},
	{"documents", "file_name", "ALTER TABLE documents ADD COLUMN file_name VARCHAR(255) NOT NULL DEFAULT ''"},
}

// Migrate creates missing tables and columns. It is safe to run repeatedly.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, t := range tables {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
		utils.LogEvent("", "migrate", "create_table", t.name)
	}
	for _, c := range upgrades {
		if HasColumn(ctx, conn, c.table, c.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("add %s.%s: %w", c.table, c.name, err)
		}
		utils.LogEvent("", "migrate", "add_column", c.table+"."+c.name)
	}
	return nil
}

// TableNames lists managed tables in creation order.
func TableNames() []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.name)
	}
	return out
}
