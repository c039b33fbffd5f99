package events

import (
	"context"
	"encoding/json"
	"time"

	"seatbooking/internal/domain/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingConfirmed Type = "booking.confirmed"
	BookingExpired   Type = "booking.expired"
)

// BookingEvent is the payload published for every booking state change.
type BookingEvent struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"booking_id"`
	VehicleID  string    `json:"vehicle_id"`
	SeatIDs    []string  `json:"seat_ids"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(t Type, b models.Booking) BookingEvent {
	return BookingEvent{
		Type:       t,
		BookingID:  b.ID,
		VehicleID:  b.VehicleID,
		SeatIDs:    b.SeatIDs,
		Status:     string(b.Status),
		OccurredAt: b.UpdatedAt,
	}
}

// Publisher delivers booking events. Delivery is best-effort: callers log
// failures and never roll back committed state because of them.
type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by booking id so every event of one
// booking lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e BookingEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal booking event")
	}
	msg := kafka.Message{
		Key:   []byte(e.BookingID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
		Time: e.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish %s", e.Type)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher records events in the log only. Used when no broker is
// configured.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, e BookingEvent) error {
	p.Logger.Info().
		Str("module", "EVENTS").
		Str("type", string(e.Type)).
		Str("booking_id", e.BookingID).
		Str("vehicle_id", e.VehicleID).
		Int("seat_count", len(e.SeatIDs)).
		Str("status", e.Status).
		Msg("booking event")
	return nil
}

func (LogPublisher) Close() error { return nil }
