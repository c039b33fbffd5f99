package models

import (
	"time"

	"seatbooking/internal/domain"
)

// Booking is a passenger's claim over one or more seats of a vehicle.
type Booking struct {
	ID             string               `json:"id"`
	VehicleID      string               `json:"vehicle_id"`
	SeatIDs        []string             `json:"seat_ids"`
	PassengerName  string               `json:"passenger_name"`
	PassengerEmail string               `json:"passenger_email"`
	PassengerPhone string               `json:"passenger_phone"`
	Status         domain.BookingStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// BookingRequest carries the input of CreateBooking.
type BookingRequest struct {
	VehicleID      string   `json:"vehicle_id" validate:"required,uuid"`
	SeatIDs        []string `json:"seat_ids" validate:"required,min=1,max=10,unique,dive,required,uuid"`
	PassengerName  string   `json:"passenger_name" validate:"required,min=2,max=100"`
	PassengerEmail string   `json:"passenger_email" validate:"required,email"`
	PassengerPhone string   `json:"passenger_phone" validate:"required,e164ish"`
}

// ExpiredBooking is the slice of a booking the sweeper needs.
type ExpiredBooking struct {
	ID        string
	VehicleID string
	SeatIDs   []string
	CreatedAt time.Time
}
