package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intdb "seatbooking/internal/db"
	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
)

// VehicleRepository is the inventory store: vehicles, their seats and the
// derived available-seat counts.
type VehicleRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

const vehicleSelect = `
	SELECT
		v.id,
		v.name,
		v.route,
		v.departure_time,
		v.total_seats,
		CAST(COALESCE(SUM(s.is_available), 0) AS SIGNED) AS available_seats,
		v.created_at,
		v.updated_at
	FROM vehicles v
	LEFT JOIN seats s ON s.vehicle_id = v.id
`

// CreateWithSeats inserts the vehicle and all of its seats in one
// transaction. Either every row lands or none does.
func (r VehicleRepository) CreateWithSeats(ctx context.Context, v models.Vehicle, seats []models.Seat) error {
	if len(seats) != v.TotalSeats {
		return domain.ValidationError{Field: "total_seats", Msg: "seat rows do not match capacity"}
	}
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	err := intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vehicles (id, name, route, departure_time, total_seats, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, v.ID, v.Name, v.Route, v.DepartureTime, v.TotalSeats, v.CreatedAt, v.UpdatedAt); err != nil {
			return classify("insert vehicle", err)
		}

		rows := make([]string, 0, len(seats))
		args := make([]any, 0, len(seats)*5)
		for _, s := range seats {
			rows = append(rows, "(?, ?, ?, ?, ?)")
			args = append(args, s.ID, v.ID, s.SeatNumber, s.IsAvailable, s.CreatedAt)
		}
		stmt := `INSERT INTO seats (id, vehicle_id, seat_number, is_available, created_at) VALUES ` + strings.Join(rows, ",")
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return classify("insert seats", err)
		}
		return nil
	})
	return classify("create vehicle", err)
}

// List returns every vehicle ordered by departure time.
func (r VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, vehicleSelect+`
		GROUP BY v.id
		ORDER BY v.departure_time ASC, v.id ASC
	`)
	if err != nil {
		return nil, classify("list vehicles", err)
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, classify("scan vehicle", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list vehicles", err)
	}
	return out, nil
}

func (r VehicleRepository) GetByID(ctx context.Context, id string) (models.Vehicle, error) {
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctx, vehicleSelect+`
		WHERE v.id = ?
		GROUP BY v.id
	`, id)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", ID: id, Err: err}
		}
		return models.Vehicle{}, classify("get vehicle", err)
	}
	return v, nil
}

// ListSeats returns the seats of a vehicle by seat number.
func (r VehicleRepository) ListSeats(ctx context.Context, vehicleID string) ([]models.Seat, error) {
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, vehicle_id, seat_number, is_available, created_at
		FROM seats
		WHERE vehicle_id = ?
		ORDER BY seat_number ASC
	`, vehicleID)
	if err != nil {
		return nil, classify("list seats", err)
	}
	defer rows.Close()

	out := []models.Seat{}
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.SeatNumber, &s.IsAvailable, &s.CreatedAt); err != nil {
			return nil, classify("scan seat", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list seats", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(s scanner) (models.Vehicle, error) {
	var v models.Vehicle
	err := s.Scan(
		&v.ID,
		&v.Name,
		&v.Route,
		&v.DepartureTime,
		&v.TotalSeats,
		&v.AvailableSeats,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}
