package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newBookingRepo(t *testing.T) (BookingRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	repo := BookingRepository{DB: db, Timeout: time.Second, Now: func() time.Time { return fixedNow }}
	return repo, mock, func() { db.Close() }
}

func pendingBooking() models.Booking {
	return models.Booking{
		ID:             "b1",
		VehicleID:      "v1",
		SeatIDs:        []string{"s3", "s1", "s2"},
		PassengerName:  "Ada Lovelace",
		PassengerEmail: "ada@example.com",
		PassengerPhone: "+6281234567890",
	}
}

func bookingRow(status domain.BookingStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "vehicle_id", "seat_ids", "passenger_name", "passenger_email", "passenger_phone", "status", "created_at", "updated_at",
	}).AddRow("b1", "v1", `["s2","s1"]`, "Ada", "ada@example.com", "+6281234567890", string(status), fixedNow, fixedNow)
}

func expectSeatLock(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT id, is_available\s+FROM seats\s+WHERE vehicle_id = \? AND id IN \(\?,\?,\?\)\s+ORDER BY id ASC\s+FOR UPDATE`).
		WithArgs("v1", "s1", "s2", "s3").
		WillReturnRows(rows)
}

func TestReserveLocksInOrderAndInsertsPending(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	expectSeatLock(mock, sqlmock.NewRows([]string{"id", "is_available"}).
		AddRow("s1", true).AddRow("s2", true).AddRow("s3", true))
	mock.ExpectExec(`UPDATE seats SET is_available = FALSE`).
		WithArgs("v1", "s1", "s2", "s3").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs("b1", "v1", `["s3","s1","s2"]`, "Ada Lovelace", "ada@example.com", "+6281234567890", "PENDING", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Reserve(context.Background(), pendingBooking())
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if b.Status != domain.StatusPending {
		t.Fatalf("status = %s, want PENDING", b.Status)
	}
	if !b.CreatedAt.Equal(fixedNow) {
		t.Fatalf("created_at = %v", b.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimestampsMatchStoredPrecision(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()
	repo.Now = func() time.Time { return fixedNow.Add(1500 * time.Microsecond) }
	stored := fixedNow.Add(time.Millisecond)

	mock.ExpectBegin()
	expectSeatLock(mock, sqlmock.NewRows([]string{"id", "is_available"}).
		AddRow("s1", true).AddRow("s2", true).AddRow("s3", true))
	mock.ExpectExec(`UPDATE seats SET is_available = FALSE`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs("b1", "v1", `["s3","s1","s2"]`, "Ada Lovelace", "ada@example.com", "+6281234567890", "PENDING", stored, stored).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Reserve(context.Background(), pendingBooking())
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if !b.CreatedAt.Equal(stored) || !b.UpdatedAt.Equal(stored) {
		t.Fatalf("timestamps = %v / %v, want %v", b.CreatedAt, b.UpdatedAt, stored)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).WithArgs("b1").WillReturnRows(bookingRow(domain.StatusPending))
	mock.ExpectExec(`UPDATE bookings SET status = \?, updated_at = \?`).
		WithArgs("CONFIRMED", stored, "b1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	confirmed, err := repo.Confirm(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if !confirmed.UpdatedAt.Equal(stored) {
		t.Fatalf("updated_at = %v, want %v", confirmed.UpdatedAt, stored)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveConflictWhenSeatTaken(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	expectSeatLock(mock, sqlmock.NewRows([]string{"id", "is_available"}).
		AddRow("s1", true).AddRow("s2", false).AddRow("s3", true))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), pendingBooking())
	var ce domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(ce.SeatIDs) != 1 || ce.SeatIDs[0] != "s2" {
		t.Fatalf("conflicting seats = %v", ce.SeatIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveNotFoundWhenSeatMissing(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	expectSeatLock(mock, sqlmock.NewRows([]string{"id", "is_available"}).
		AddRow("s1", true).AddRow("s2", true))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), pendingBooking())
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(nf.SeatIDs) != 1 || nf.SeatIDs[0] != "s3" {
		t.Fatalf("missing seats = %v", nf.SeatIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveRollsBackWhenCommitHookFails(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()
	repo.BeforeCommit = func(context.Context) error { return errors.New("injected failure") }

	mock.ExpectBegin()
	expectSeatLock(mock, sqlmock.NewRows([]string{"id", "is_available"}).
		AddRow("s1", true).AddRow("s2", true).AddRow("s3", true))
	mock.ExpectExec(`UPDATE seats SET is_available = FALSE`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), pendingBooking())
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction must roll back without commit: %v", err)
	}
}

func TestReserveDeadlockIsTransient(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM seats`).WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), pendingBooking())
	if !domain.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestReserveRejectsEmptyAndOversizedSeatLists(t *testing.T) {
	repo, _, done := newBookingRepo(t)
	defer done()

	b := pendingBooking()
	b.SeatIDs = nil
	if _, err := repo.Reserve(context.Background(), b); !domain.IsValidation(err) {
		t.Fatalf("empty seat list: expected validation error, got %v", err)
	}
	b.SeatIDs = make([]string, domain.MaxSeatsPerBooking+1)
	if _, err := repo.Reserve(context.Background(), b); !domain.IsValidation(err) {
		t.Fatalf("oversized seat list: expected validation error, got %v", err)
	}
}

func TestConfirmPendingBooking(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).WithArgs("b1").WillReturnRows(bookingRow(domain.StatusPending))
	mock.ExpectExec(`UPDATE bookings SET status = \?, updated_at = \?`).
		WithArgs("CONFIRMED", fixedNow, "b1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Confirm(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if b.Status != domain.StatusConfirmed {
		t.Fatalf("status = %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpireReleasesSeats(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).WithArgs("b1").WillReturnRows(bookingRow(domain.StatusPending))
	mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("FAILED", fixedNow, "b1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE seats SET is_available = TRUE`).
		WithArgs("v1", "s1", "s2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	b, err := repo.Expire(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Expire returned error: %v", err)
	}
	if b.Status != domain.StatusFailed {
		t.Fatalf("status = %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpireConfirmedIsStateConflict(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).WithArgs("b1").WillReturnRows(bookingRow(domain.StatusConfirmed))
	mock.ExpectRollback()

	_, err := repo.Expire(context.Background(), "b1")
	if !domain.IsStateConflict(err) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("seats must not be touched: %v", err)
	}
}

func TestConfirmMissingBooking(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := repo.Confirm(context.Background(), "nope"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListExpiredUsesCutoff(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	cutoff := fixedNow.Add(-2 * time.Minute)
	mock.ExpectQuery(`FROM bookings\s+WHERE status = \? AND created_at < \?\s+ORDER BY created_at ASC\s+LIMIT \?`).
		WithArgs("PENDING", cutoff, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "seat_ids", "created_at"}).
			AddRow("b1", "v1", `["s1"]`, cutoff.Add(-time.Minute)))

	out, err := repo.ListExpired(context.Background(), cutoff, 50)
	if err != nil {
		t.Fatalf("ListExpired returned error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "b1" || len(out[0].SeatIDs) != 1 {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	repo, mock, done := newBookingRepo(t)
	defer done()

	mock.ExpectQuery(`FROM bookings WHERE id = \?`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
