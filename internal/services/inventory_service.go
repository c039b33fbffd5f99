package services

import (
	"context"
	"strings"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InventoryStore is the persistence the inventory service needs.
// repositories.VehicleRepository implements it.
type InventoryStore interface {
	CreateWithSeats(ctx context.Context, v models.Vehicle, seats []models.Seat) error
	List(ctx context.Context) ([]models.Vehicle, error)
	GetByID(ctx context.Context, id string) (models.Vehicle, error)
	ListSeats(ctx context.Context, vehicleID string) ([]models.Seat, error)
}

type InventoryService struct {
	Store     InventoryStore
	Validator *InputValidator
	Logger    zerolog.Logger
	NewID     func() string
}

func (s InventoryService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s InventoryService) validator() *InputValidator {
	if s.Validator != nil {
		return s.Validator
	}
	return NewInputValidator()
}

// CreateVehicle stores a vehicle and its seats numbered 1..TotalSeats, all
// available.
func (s InventoryService) CreateVehicle(ctx context.Context, in models.VehicleInput) (models.Vehicle, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Route = utils.NormalizeSpace(in.Route)
	if err := s.validator().Struct(in); err != nil {
		return models.Vehicle{}, err
	}

	now := utils.NowUTC()
	v := models.Vehicle{
		ID:             s.newID(),
		Name:           in.Name,
		Route:          in.Route,
		DepartureTime:  in.DepartureTime.UTC(),
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	seats := make([]models.Seat, 0, in.TotalSeats)
	for n := 1; n <= in.TotalSeats; n++ {
		seats = append(seats, models.Seat{
			ID:          s.newID(),
			VehicleID:   v.ID,
			SeatNumber:  n,
			IsAvailable: true,
			CreatedAt:   now,
		})
	}

	if err := s.Store.CreateWithSeats(ctx, v, seats); err != nil {
		return models.Vehicle{}, err
	}
	s.Logger.Info().
		Str("module", "INVENTORY").
		Str("action", "create_vehicle").
		Str("vehicle_id", v.ID).
		Int("total_seats", v.TotalSeats).
		Msg("vehicle created")
	return v, nil
}

func (s InventoryService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return s.Store.List(ctx)
}

func (s InventoryService) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if _, err := uuid.Parse(id); err != nil {
		return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", ID: id, Err: err}
	}
	return s.Store.GetByID(ctx, id)
}

// ListSeats fails with NotFound when the vehicle does not exist, even though
// an unknown vehicle simply has no seats.
func (s InventoryService) ListSeats(ctx context.Context, vehicleID string) ([]models.Seat, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return s.Store.ListSeats(ctx, v.ID)
}
