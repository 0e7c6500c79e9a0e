package services

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Routing keys for booking lifecycle events.
const (
	EventBookingCreated       = "booking.created"
	EventBookingUpdated       = "booking.updated"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the payload published for every booking lifecycle change.
type BookingEvent struct {
	BookingID  uint      `json:"booking_id"`
	Reference  string    `json:"reference"`
	UserID     uint      `json:"user_id"`
	TableID    uint      `json:"table_id"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
	DateTime   time.Time `json:"date_time"`
	Duration   int       `json:"duration"`
	GuestCount int       `json:"guest_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers domain events to downstream consumers
// (notification workers, analytics).
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// AMQPPublisher publishes persistent JSON messages to a durable queue named
// after the routing key on the default exchange.
type AMQPPublisher struct {
	URL string
	Log *logrus.Logger
}

func NewAMQPPublisher(url string, log *logrus.Logger) *AMQPPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AMQPPublisher{URL: url, Log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Errorf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Errorf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		routingKey, // name
		true,       // durable
		false,      // autoDelete
		false,      // exclusive
		false,      // noWait
		nil,        // args
	); err != nil {
		p.Log.Errorf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
