package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/events"
)

// memDB mirrors the locking contract of the SQL repositories: every
// mutation happens under one lock, verified before it is applied.
type memDB struct {
	mu       sync.Mutex
	now      func() time.Time
	vehicles map[string]models.Vehicle
	seats    map[string]*models.Seat
	bookings map[string]models.Booking
}

func newMemDB() *memDB {
	return &memDB{
		now:      func() time.Time { return time.Now().UTC() },
		vehicles: map[string]models.Vehicle{},
		seats:    map[string]*models.Seat{},
		bookings: map[string]models.Booking{},
	}
}

type memInventory struct{ db *memDB }

func (m memInventory) CreateWithSeats(_ context.Context, v models.Vehicle, seats []models.Seat) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.vehicles[v.ID] = v
	for i := range seats {
		s := seats[i]
		m.db.seats[s.ID] = &s
	}
	return nil
}

func (m memInventory) List(_ context.Context) ([]models.Vehicle, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]models.Vehicle, 0, len(m.db.vehicles))
	for _, v := range m.db.vehicles {
		out = append(out, m.db.withAvailability(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out, nil
}

func (m memInventory) GetByID(_ context.Context, id string) (models.Vehicle, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	v, ok := m.db.vehicles[id]
	if !ok {
		return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", ID: id}
	}
	return m.db.withAvailability(v), nil
}

func (m memInventory) ListSeats(_ context.Context, vehicleID string) ([]models.Seat, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.Seat{}
	for _, s := range m.db.seats {
		if s.VehicleID == vehicleID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (db *memDB) withAvailability(v models.Vehicle) models.Vehicle {
	v.AvailableSeats = 0
	for _, s := range db.seats {
		if s.VehicleID == v.ID && s.IsAvailable {
			v.AvailableSeats++
		}
	}
	return v
}

type memBookings struct{ db *memDB }

func (m memBookings) Reserve(_ context.Context, b models.Booking) (models.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	missing, taken := []string{}, []string{}
	for _, id := range b.SeatIDs {
		s, ok := m.db.seats[id]
		switch {
		case !ok || s.VehicleID != b.VehicleID:
			missing = append(missing, id)
		case !s.IsAvailable:
			taken = append(taken, id)
		}
	}
	if len(missing) > 0 {
		return models.Booking{}, domain.NotFoundError{Resource: "seat", SeatIDs: missing}
	}
	if len(taken) > 0 {
		return models.Booking{}, domain.ConflictError{Resource: "seat", SeatIDs: taken}
	}
	for _, id := range b.SeatIDs {
		m.db.seats[id].IsAvailable = false
	}
	b.Status = domain.StatusPending
	b.CreatedAt = m.db.now()
	b.UpdatedAt = b.CreatedAt
	m.db.bookings[b.ID] = b
	return b, nil
}

func (m memBookings) Confirm(ctx context.Context, id string) (models.Booking, error) {
	return m.transition(id, domain.StatusConfirmed)
}

func (m memBookings) Expire(ctx context.Context, id string) (models.Booking, error) {
	return m.transition(id, domain.StatusFailed)
}

func (m memBookings) transition(id string, to domain.BookingStatus) (models.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	if err := domain.Transition(id, b.Status, to); err != nil {
		return models.Booking{}, err
	}
	if to == domain.StatusFailed {
		for _, sid := range b.SeatIDs {
			m.db.seats[sid].IsAvailable = true
		}
	}
	b.Status = to
	b.UpdatedAt = m.db.now()
	m.db.bookings[id] = b
	return b, nil
}

func (m memBookings) GetByID(_ context.Context, id string) (models.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return b, nil
}

func (m memBookings) ListExpired(_ context.Context, cutoff time.Time, limit int) ([]models.ExpiredBooking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.ExpiredBooking{}
	for _, b := range m.db.bookings {
		if b.Status == domain.StatusPending && b.CreatedAt.Before(cutoff) {
			out = append(out, models.ExpiredBooking{ID: b.ID, VehicleID: b.VehicleID, SeatIDs: b.SeatIDs, CreatedAt: b.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// recordingPublisher keeps every event it is handed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, string(e.Type)+":"+e.BookingID)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
