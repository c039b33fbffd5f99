package domain

import "time"

const (
	MinVehicleSeats = 10
	MaxVehicleSeats = 100

	MaxSeatsPerBooking = 10
)

// Defaults for the reclamation of abandoned bookings. Both are overridable
// from the environment; a real confirmation gate needs them re-tuned.
const (
	DefaultExpiryThreshold  = 2 * time.Minute
	DefaultSweepInterval    = 60 * time.Second
	DefaultStatementTimeout = 60 * time.Second
)

// RequestContext carries authenticated caller info when available.
type RequestContext struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
