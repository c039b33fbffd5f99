package models

import "time"

// Vehicle is a scheduled transport unit with a fixed seat capacity.
// AvailableSeats is computed from the seats table on every read.
type Vehicle struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Route          string    `json:"route"`
	DepartureTime  time.Time `json:"departure_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type VehicleInput struct {
	Name          string    `json:"name" validate:"required,min=3,max=100"`
	Route         string    `json:"route" validate:"required,min=5,max=200"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	TotalSeats    int       `json:"total_seats" validate:"min=10,max=100"`
}

// Seat is a single bookable unit. IsAvailable is the only mutable field.
type Seat struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicle_id"`
	SeatNumber  int       `json:"seat_number"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}
