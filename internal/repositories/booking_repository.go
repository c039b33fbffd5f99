package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	intdb "seatbooking/internal/db"
	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/utils"
)

// BookingRepository owns the bookings table and every mutation of the seat
// availability flag.
type BookingRepository struct {
	DB      *sql.DB
	Timeout time.Duration
	Now     func() time.Time

	// BeforeCommit runs after the seats are claimed and the booking row is
	// written, right before commit. An error aborts the reservation.
	BeforeCommit func(ctx context.Context) error
}

const bookingColumns = `id, vehicle_id, seat_ids, passenger_name, passenger_email, passenger_phone, status, created_at, updated_at`

type lockedSeat struct {
	ID          string
	IsAvailable bool
}

// now matches the DATETIME(3) columns so returned bookings equal what a
// later read sees.
func (r BookingRepository) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC().Truncate(time.Millisecond)
	}
	return utils.NowUTC()
}

// Reserve atomically claims b.SeatIDs on b.VehicleID and records b as
// PENDING. The requested seat rows are locked in ascending id order; if any
// is missing or already taken nothing is written.
func (r BookingRepository) Reserve(ctx context.Context, b models.Booking) (models.Booking, error) {
	if len(b.SeatIDs) == 0 || len(b.SeatIDs) > domain.MaxSeatsPerBooking {
		return models.Booking{}, domain.ValidationError{Field: "seat_ids", Msg: "must hold 1 to 10 seats"}
	}
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	lockOrder := append([]string(nil), b.SeatIDs...)
	sort.Strings(lockOrder)

	now := r.now()
	b.Status = domain.StatusPending
	b.CreatedAt = now
	b.UpdatedAt = now

	seatJSON, err := json.Marshal(b.SeatIDs)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "encode seat ids", Err: err}
	}

	err = intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		locked, err := lockSeats(ctx, tx, b.VehicleID, lockOrder)
		if err != nil {
			return classify("lock seats", err)
		}
		if missing := missingSeats(lockOrder, locked); len(missing) > 0 {
			return domain.NotFoundError{Resource: "seat", SeatIDs: missing}
		}
		if taken := takenSeats(locked); len(taken) > 0 {
			return domain.ConflictError{
				Resource: "seat",
				Msg:      "one or more selected seats are no longer available",
				SeatIDs:  taken,
			}
		}

		args := append([]any{b.VehicleID}, intdb.StringArgs(lockOrder)...)
		res, err := tx.ExecContext(ctx, `
			UPDATE seats SET is_available = FALSE
			WHERE vehicle_id = ? AND id IN (`+intdb.Placeholders(len(lockOrder))+`)
		`, args...)
		if err != nil {
			return classify("claim seats", err)
		}
		if n, err := res.RowsAffected(); err == nil && int(n) != len(lockOrder) {
			return domain.InternalError{Msg: "claimed seat count mismatch"}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.ID, b.VehicleID, string(seatJSON), b.PassengerName, b.PassengerEmail, b.PassengerPhone,
			string(b.Status), b.CreatedAt, b.UpdatedAt); err != nil {
			return classify("insert booking", err)
		}

		if r.BeforeCommit != nil {
			return r.BeforeCommit(ctx)
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, classify("reserve seats", err)
	}
	return b, nil
}

// Confirm moves a PENDING booking to CONFIRMED. Seats stay claimed.
func (r BookingRepository) Confirm(ctx context.Context, id string) (models.Booking, error) {
	return r.transition(ctx, id, domain.StatusConfirmed, nil)
}

// Expire moves a PENDING booking to FAILED and releases its seats in the
// same transaction.
func (r BookingRepository) Expire(ctx context.Context, id string) (models.Booking, error) {
	return r.transition(ctx, id, domain.StatusFailed, releaseSeats)
}

func (r BookingRepository) transition(ctx context.Context, id string, to domain.BookingStatus,
	effect func(ctx context.Context, tx *sql.Tx, b models.Booking) error) (models.Booking, error) {
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	var out models.Booking
	err := intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "booking", ID: id, Err: err}
			}
			return classify("lock booking", err)
		}
		if err := domain.Transition(b.ID, b.Status, to); err != nil {
			return err
		}

		now := r.now()
		if _, err := tx.ExecContext(ctx, `
			UPDATE bookings SET status = ?, updated_at = ?
			WHERE id = ? AND status = ?
		`, string(to), now, b.ID, string(b.Status)); err != nil {
			return classify("update booking status", err)
		}
		if effect != nil {
			if err := effect(ctx, tx, b); err != nil {
				return err
			}
		}

		b.Status = to
		b.UpdatedAt = now
		out = b
		return nil
	})
	if err != nil {
		return models.Booking{}, classify("transition booking", err)
	}
	return out, nil
}

func releaseSeats(ctx context.Context, tx *sql.Tx, b models.Booking) error {
	if len(b.SeatIDs) == 0 {
		return nil
	}
	ids := append([]string(nil), b.SeatIDs...)
	sort.Strings(ids)
	args := append([]any{b.VehicleID}, intdb.StringArgs(ids)...)
	if _, err := tx.ExecContext(ctx, `
		UPDATE seats SET is_available = TRUE
		WHERE vehicle_id = ? AND id IN (`+intdb.Placeholders(len(ids))+`)
	`, args...); err != nil {
		return classify("release seats", err)
	}
	return nil
}

// GetByID reads a booking without locking.
func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	b, err := scanBooking(r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id, Err: err}
		}
		return models.Booking{}, classify("get booking", err)
	}
	return b, nil
}

// ListExpired returns PENDING bookings created before cutoff, oldest first.
func (r BookingRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.ExpiredBooking, error) {
	ctx, cancel := intdb.Bound(ctx, r.Timeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, vehicle_id, seat_ids, created_at
		FROM bookings
		WHERE status = ? AND created_at < ?
		ORDER BY created_at ASC
		LIMIT ?
	`, string(domain.StatusPending), cutoff.UTC(), limit)
	if err != nil {
		return nil, classify("list expired bookings", err)
	}
	defer rows.Close()

	out := []models.ExpiredBooking{}
	for rows.Next() {
		var (
			e   models.ExpiredBooking
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.VehicleID, &raw, &e.CreatedAt); err != nil {
			return nil, classify("scan expired booking", err)
		}
		if err := json.Unmarshal(raw, &e.SeatIDs); err != nil {
			return nil, domain.InternalError{Msg: "decode seat ids", Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list expired bookings", err)
	}
	return out, nil
}

func lockSeats(ctx context.Context, tx *sql.Tx, vehicleID string, ids []string) ([]lockedSeat, error) {
	args := append([]any{vehicleID}, intdb.StringArgs(ids)...)
	rows, err := tx.QueryContext(ctx, `
		SELECT id, is_available
		FROM seats
		WHERE vehicle_id = ? AND id IN (`+intdb.Placeholders(len(ids))+`)
		ORDER BY id ASC
		FOR UPDATE
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]lockedSeat, 0, len(ids))
	for rows.Next() {
		var s lockedSeat
		if err := rows.Scan(&s.ID, &s.IsAvailable); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func missingSeats(requested []string, locked []lockedSeat) []string {
	if len(locked) == len(requested) {
		return nil
	}
	found := make(map[string]struct{}, len(locked))
	for _, s := range locked {
		found[s.ID] = struct{}{}
	}
	missing := []string{}
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func takenSeats(locked []lockedSeat) []string {
	taken := []string{}
	for _, s := range locked {
		if !s.IsAvailable {
			taken = append(taken, s.ID)
		}
	}
	return taken
}

func scanBooking(s scanner) (models.Booking, error) {
	var (
		b      models.Booking
		raw    []byte
		status string
	)
	if err := s.Scan(
		&b.ID,
		&b.VehicleID,
		&raw,
		&b.PassengerName,
		&b.PassengerEmail,
		&b.PassengerPhone,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return models.Booking{}, err
	}
	if err := json.Unmarshal(raw, &b.SeatIDs); err != nil {
		return models.Booking{}, domain.InternalError{Msg: "decode seat ids", Err: err}
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}
