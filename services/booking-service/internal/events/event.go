// Package events publishes appointment change events to Kafka. Publishing
// happens inline after a successful write and never fails the request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/model"
)

const (
	AppointmentCreated = "booking.appointment.created.v1"
	AppointmentUpdated = "booking.appointment.updated.v1"
	AppointmentDeleted = "booking.appointment.deleted.v1"
)

// Event is one message. The Kafka topic is the configured prefix plus Type;
// AggregateID is the message key.
type Event struct {
	Type        string
	AggregateID string
	Payload     []byte
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error { return nil }

type appointmentPayload struct {
	AppointmentID   string    `json:"appointment_id"`
	UserName        string    `json:"user_name"`
	Phone           string    `json:"phone"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewAppointmentEvent builds an event of eventType describing a.
func NewAppointmentEvent(eventType string, a model.Appointment, occurredAt time.Time) (Event, error) {
	payload, err := json.Marshal(appointmentPayload{
		AppointmentID:   a.ID,
		UserName:        a.UserName,
		Phone:           a.Phone,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		OccurredAt:      occurredAt.UTC(),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, AggregateID: a.ID, Payload: payload}, nil
}
