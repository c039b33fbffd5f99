package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type ddl struct {
	table string
	stmt  string
}

var schema = []ddl{
	{"vehicles", `
CREATE TABLE IF NOT EXISTS vehicles (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	route VARCHAR(200) NOT NULL,
	departure_time DATETIME(3) NOT NULL,
	total_seats INT NOT NULL,
	created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	KEY idx_vehicles_departure (departure_time)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"seats", `
CREATE TABLE IF NOT EXISTS seats (
	id CHAR(36) NOT NULL PRIMARY KEY,
	vehicle_id CHAR(36) NOT NULL,
	seat_number INT NOT NULL,
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	UNIQUE KEY uniq_vehicle_seat (vehicle_id, seat_number),
	CONSTRAINT fk_seats_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) NOT NULL PRIMARY KEY,
	vehicle_id CHAR(36) NOT NULL,
	seat_ids JSON NOT NULL,
	passenger_name VARCHAR(100) NOT NULL,
	passenger_email VARCHAR(255) NOT NULL,
	passenger_phone VARCHAR(20) NOT NULL,
	status ENUM('PENDING','CONFIRMED','FAILED') NOT NULL DEFAULT 'PENDING',
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL,
	KEY idx_bookings_status_created (status, created_at),
	CONSTRAINT fk_bookings_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// EnsureSchema creates the vehicles, seats and bookings tables when they
// are missing. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, d := range schema {
		if HasTable(ctx, db, d.table) {
			continue
		}
		if _, err := db.ExecContext(ctx, d.stmt); err != nil {
			return errors.Wrapf(err, "create table %s", d.table)
		}
	}
	return nil
}
