package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var (
	mysqlError1205 = mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	mysqlError1062 = mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
)

func newVehicleRepo(t *testing.T) (VehicleRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return VehicleRepository{DB: db, Timeout: time.Second}, mock, func() { db.Close() }
}

var vehicleCols = []string{"id", "name", "route", "departure_time", "total_seats", "available_seats", "created_at", "updated_at"}

func TestCreateWithSeatsSingleTransaction(t *testing.T) {
	repo, mock, done := newVehicleRepo(t)
	defer done()

	v := models.Vehicle{ID: "v1", Name: "Bus 1", Route: "Jakarta - Bandung", DepartureTime: fixedNow, TotalSeats: 2}
	seats := []models.Seat{
		{ID: "s1", VehicleID: "v1", SeatNumber: 1, IsAvailable: true, CreatedAt: fixedNow},
		{ID: "s2", VehicleID: "v1", SeatNumber: 2, IsAvailable: true, CreatedAt: fixedNow},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vehicles`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO seats \(id, vehicle_id, seat_number, is_available, created_at\) VALUES \(\?, \?, \?, \?, \?\),\(\?, \?, \?, \?, \?\)`).
		WithArgs("s1", "v1", 1, true, fixedNow, "s2", "v1", 2, true, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.CreateWithSeats(context.Background(), v, seats); err != nil {
		t.Fatalf("CreateWithSeats returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateWithSeatsRollsBackOnSeatFailure(t *testing.T) {
	repo, mock, done := newVehicleRepo(t)
	defer done()

	v := models.Vehicle{ID: "v1", TotalSeats: 1}
	seats := []models.Seat{{ID: "s1", VehicleID: "v1", SeatNumber: 1, IsAvailable: true}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vehicles`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO seats`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := repo.CreateWithSeats(context.Background(), v, seats); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListVehiclesOrderedWithAvailability(t *testing.T) {
	repo, mock, done := newVehicleRepo(t)
	defer done()

	later := fixedNow.Add(time.Hour)
	mock.ExpectQuery(`SUM\(s.is_available\).*GROUP BY v.id\s+ORDER BY v.departure_time ASC`).
		WillReturnRows(sqlmock.NewRows(vehicleCols).
			AddRow("v1", "Bus 1", "Jakarta - Bandung", fixedNow, 10, 7, fixedNow, fixedNow).
			AddRow("v2", "Bus 2", "Bandung - Jakarta", later, 20, 20, fixedNow, fixedNow))

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "v1" || list[0].AvailableSeats != 7 {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestGetVehicleNotFound(t *testing.T) {
	repo, mock, done := newVehicleRepo(t)
	defer done()

	mock.ExpectQuery(`WHERE v.id = \?`).WithArgs("v9").WillReturnRows(sqlmock.NewRows(vehicleCols))

	if _, err := repo.GetByID(context.Background(), "v9"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSeatsBySeatNumber(t *testing.T) {
	repo, mock, done := newVehicleRepo(t)
	defer done()

	mock.ExpectQuery(`FROM seats\s+WHERE vehicle_id = \?\s+ORDER BY seat_number ASC`).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "seat_number", "is_available", "created_at"}).
			AddRow("s1", "v1", 1, true, fixedNow).
			AddRow("s2", "v1", 2, false, fixedNow))

	seats, err := repo.ListSeats(context.Background(), "v1")
	if err != nil {
		t.Fatalf("ListSeats returned error: %v", err)
	}
	if len(seats) != 2 || seats[1].IsAvailable {
		t.Fatalf("unexpected seats %+v", seats)
	}
}

func TestClassifyLockWaitTimeout(t *testing.T) {
	err := classify("lock seats", &mysqlError1205)
	if !domain.IsTransient(err) {
		t.Fatalf("expected transient, got %v", err)
	}
	if dup := classify("insert booking", &mysqlError1062); !domain.IsConflict(dup) {
		t.Fatalf("expected conflict, got %v", dup)
	}
	if ctxErr := classify("reserve", context.DeadlineExceeded); !domain.IsTransient(ctxErr) {
		t.Fatalf("expected transient for deadline, got %v", ctxErr)
	}
	typed := domain.NotFoundError{Resource: "seat"}
	if got := classify("reserve", typed); !domain.IsNotFound(got) {
		t.Fatalf("typed errors must pass through, got %v", got)
	}
}
