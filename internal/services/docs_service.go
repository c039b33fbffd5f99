package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/rs/zerolog"
)

type BookingReader interface {
	GetByID(ctx context.Context, id string) (models.Booking, error)
}

// SeatLister resolves seat ids to seat numbers for printing.
type SeatLister interface {
	ListSeats(ctx context.Context, vehicleID string) ([]models.Seat, error)
}

// DocsService renders printable tickets for confirmed bookings.
type DocsService struct {
	Bookings BookingReader
	Vehicles VehicleLookup
	Seats    SeatLister
	Logger   zerolog.Logger
}

type ticketData struct {
	BookingID      string
	PassengerName  string
	PassengerEmail string
	PassengerPhone string
	VehicleName    string
	Route          string
	Departure      string
	SeatNumbers    []int
	IssuedAt       string
}

// GenerateTicket returns the ticket PDF and its file name. Only CONFIRMED
// bookings have a ticket.
func (s DocsService) GenerateTicket(ctx context.Context, bookingID string) ([]byte, string, error) {
	bookingID, err := normalizeBookingID(bookingID)
	if err != nil {
		return nil, "", err
	}
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if b.Status != domain.StatusConfirmed {
		return nil, "", domain.StateConflictError{BookingID: b.ID, From: b.Status, To: domain.StatusConfirmed}
	}

	d := ticketData{
		BookingID:      b.ID,
		PassengerName:  b.PassengerName,
		PassengerEmail: b.PassengerEmail,
		PassengerPhone: b.PassengerPhone,
		IssuedAt:       utils.FormatDateTime(utils.NowUTC()),
	}
	if s.Vehicles != nil {
		v, err := s.Vehicles.GetByID(ctx, b.VehicleID)
		if err != nil {
			return nil, "", err
		}
		d.VehicleName = v.Name
		d.Route = v.Route
		d.Departure = utils.FormatDateTime(v.DepartureTime)
	}
	if s.Seats != nil {
		seats, err := s.Seats.ListSeats(ctx, b.VehicleID)
		if err != nil {
			return nil, "", err
		}
		d.SeatNumbers = seatNumbers(b.SeatIDs, seats)
	}

	s.Logger.Info().
		Str("module", "DOCS").
		Str("action", "generate_ticket").
		Str("booking_id", b.ID).
		Msg("ticket generated")
	return buildTicketPDF(d)
}

// seatNumbers keeps the seat order of the seats table, which is by number.
func seatNumbers(ids []string, seats []models.Seat) []int {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]int, 0, len(ids))
	for _, s := range seats {
		if _, ok := want[s.ID]; ok {
			out = append(out, s.SeatNumber)
		}
	}
	return out
}

func buildTicketPDF(d ticketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOARDING TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger   : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Email       : %s", safe(d.PassengerEmail, "-")),
		fmt.Sprintf("Phone       : %s", safe(d.PassengerPhone, "-")),
		fmt.Sprintf("Vehicle     : %s", safe(d.VehicleName, "-")),
		fmt.Sprintf("Route       : %s", safe(d.Route, "-")),
		fmt.Sprintf("Departure   : %s", safe(d.Departure, "-")),
		fmt.Sprintf("Seats       : %s", joinSeatNumbers(d.SeatNumbers)),
		fmt.Sprintf("Booking     : %s", d.BookingID),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Issued "+d.IssuedAt+". Present this ticket at boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render ticket", Err: err}
	}

	filename := fmt.Sprintf("TICKET_%s_%s.pdf", utils.SafeFilenamePart(d.BookingID), utils.SafeFilenamePart(d.PassengerName))
	return buf.Bytes(), filename, nil
}

func joinSeatNumbers(nums []int) string {
	if len(nums) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(nums))
	for _, n := range nums {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ", ")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
