package handlers

import (
	"context"
	"database/sql"

	"seatbooking/internal/domain/models"

	"github.com/rs/zerolog"
)

type InventoryAPI interface {
	CreateVehicle(ctx context.Context, in models.VehicleInput) (models.Vehicle, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (models.Vehicle, error)
	ListSeats(ctx context.Context, vehicleID string) ([]models.Seat, error)
}

type BookingAPI interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (models.Booking, error)
	GetBooking(ctx context.Context, id string) (models.Booking, error)
}

type TicketAPI interface {
	GenerateTicket(ctx context.Context, bookingID string) ([]byte, string, error)
}

// Handler carries the services behind the HTTP routes.
type Handler struct {
	Inventory InventoryAPI
	Bookings  BookingAPI
	Tickets   TicketAPI
	DB        *sql.DB
	Logger    zerolog.Logger
}
