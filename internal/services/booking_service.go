package services

import (
	"context"
	"strings"
	"time"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/events"
	"seatbooking/internal/metrics"
	"seatbooking/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingStore is the transactional booking storage.
// repositories.BookingRepository implements it.
type BookingStore interface {
	Reserve(ctx context.Context, b models.Booking) (models.Booking, error)
	Confirm(ctx context.Context, id string) (models.Booking, error)
	Expire(ctx context.Context, id string) (models.Booking, error)
	GetByID(ctx context.Context, id string) (models.Booking, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.ExpiredBooking, error)
}

// VehicleLookup is the slice of inventory the booking flow reads.
type VehicleLookup interface {
	GetByID(ctx context.Context, id string) (models.Vehicle, error)
}

type BookingService struct {
	Store     BookingStore
	Vehicles  VehicleLookup
	Validator *InputValidator
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	NewID     func() string
}

func (s BookingService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s BookingService) validator() *InputValidator {
	if s.Validator != nil {
		return s.Validator
	}
	return NewInputValidator()
}

// CreateBooking reserves the requested seats and confirms the booking.
// Once the reservation commits, confirmation ignores the caller's
// cancellation. A failed confirmation leaves the booking PENDING with its
// seats held until the expiry sweeper releases them, and is reported as an
// InternalError carrying the booking id.
func (s BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (models.Booking, error) {
	req.VehicleID = strings.ToLower(strings.TrimSpace(req.VehicleID))
	req.SeatIDs = utils.NormalizeIDs(req.SeatIDs)
	req.PassengerName = utils.NormalizeSpace(req.PassengerName)
	req.PassengerEmail = strings.TrimSpace(req.PassengerEmail)
	req.PassengerPhone = strings.TrimSpace(req.PassengerPhone)
	if err := s.validator().Struct(req); err != nil {
		return models.Booking{}, err
	}

	if s.Vehicles != nil {
		if _, err := s.Vehicles.GetByID(ctx, req.VehicleID); err != nil {
			return models.Booking{}, err
		}
	}

	start := time.Now()
	pending, err := s.Store.Reserve(ctx, models.Booking{
		ID:             s.newID(),
		VehicleID:      req.VehicleID,
		SeatIDs:        req.SeatIDs,
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
		PassengerPhone: req.PassengerPhone,
	})
	s.observeReservation(start, err)
	if err != nil {
		ev := s.Logger.Warn()
		if k := domain.KindOf(err); k == domain.KindConflict || k == domain.KindNotFound {
			ev = s.Logger.Debug()
		}
		ev.Str("module", "BOOKING").
			Str("action", "reserve").
			Str("vehicle_id", req.VehicleID).
			Strs("seat_ids", req.SeatIDs).
			Str("kind", string(domain.KindOf(err))).
			Err(err).
			Msg("reservation rejected")
		return models.Booking{}, err
	}
	committed := context.WithoutCancel(ctx)
	s.publish(committed, events.BookingCreated, pending)

	confirmed, err := s.ConfirmBooking(committed, pending.ID)
	if err != nil {
		return models.Booking{}, domain.InternalError{
			Msg:       "booking reserved but not confirmed",
			BookingID: pending.ID,
			Err:       err,
		}
	}
	s.Logger.Info().
		Str("module", "BOOKING").
		Str("action", "create").
		Str("booking_id", confirmed.ID).
		Str("vehicle_id", confirmed.VehicleID).
		Int("seat_count", len(confirmed.SeatIDs)).
		Msg("booking confirmed")
	return confirmed, nil
}

func (s BookingService) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	id, err := normalizeBookingID(id)
	if err != nil {
		return models.Booking{}, err
	}
	return s.Store.GetByID(ctx, id)
}

// normalizeBookingID lowercases a path id. Anything that is not a uuid
// cannot exist.
func normalizeBookingID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.NotFoundError{Resource: "booking", ID: id, Err: err}
	}
	return id, nil
}

func (s BookingService) ConfirmBooking(ctx context.Context, id string) (models.Booking, error) {
	b, err := s.Store.Confirm(ctx, id)
	s.observeTransition(domain.StatusConfirmed, err)
	if err != nil {
		s.Logger.Error().
			Str("module", "BOOKING").
			Str("action", "confirm").
			Str("booking_id", id).
			Str("kind", string(domain.KindOf(err))).
			Err(err).
			Msg("confirm failed")
		return models.Booking{}, err
	}
	s.publish(ctx, events.BookingConfirmed, b)
	return b, nil
}

// ExpireBooking fails a PENDING booking and releases its seats. Any other
// status yields a StateConflictError.
func (s BookingService) ExpireBooking(ctx context.Context, id string) (models.Booking, error) {
	b, err := s.Store.Expire(ctx, id)
	s.observeTransition(domain.StatusFailed, err)
	if err != nil {
		return models.Booking{}, err
	}
	s.publish(ctx, events.BookingExpired, b)
	return b, nil
}

func (s BookingService) publish(ctx context.Context, t events.Type, b models.Booking) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, events.NewBookingEvent(t, b)); err != nil {
		s.Logger.Warn().
			Str("module", "EVENTS").
			Str("type", string(t)).
			Str("booking_id", b.ID).
			Err(err).
			Msg("publish failed")
	}
}

func (s BookingService) observeReservation(start time.Time, err error) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.ReservationDuration.Observe(time.Since(start).Seconds())
	s.Metrics.ReservationAttempts.WithLabelValues(outcome(err)).Inc()
}

func (s BookingService) observeTransition(to domain.BookingStatus, err error) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Transitions.WithLabelValues(string(to), outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.KindOf(err))
}
