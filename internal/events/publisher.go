// Package events forwards lead change events to RabbitMQ so other
// back-office services can react to pipeline activity.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/models"
)

const (
	ExchangeName = "ex.leads"
	QueueName    = "q.lead-events"
	RoutingKey   = "k.lead"

	publishTimeout = 5 * time.Second
)

// Publisher delivers lead events to a direct exchange. A nil Publisher
// is valid and drops everything, so the broker stays optional.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *logrus.Logger
}

// LeadMessage is the wire payload for one lead event
type LeadMessage struct {
	Type      string    `json:"type"`
	LeadID    string    `json:"lead_id"`
	UserID    string    `json:"user_id"`
	Stage     string    `json:"stage,omitempty"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPublisher connects to the broker and declares the exchange, queue
// and binding
func NewPublisher(url string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Publish sends one lead event to the exchange
func (p *Publisher) Publish(ctx context.Context, event models.LeadEvent) error {
	if p == nil {
		return nil
	}

	msg := LeadMessage{
		Type:      event.Type.String(),
		LeadID:    event.LeadID,
		UserID:    event.UserID,
		Timestamp: time.Now(),
	}
	if event.Lead != nil {
		msg.Stage = event.Lead.Stage
		msg.Name = event.Lead.Name
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal lead message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish lead event: %w", err)
	}
	return nil
}

// HandleFeedEvent adapts Publish to the change feed's handler shape.
// Broker failures are logged and swallowed; the local mutation already
// committed.
func (p *Publisher) HandleFeedEvent(event models.LeadEvent) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, event); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"type":    event.Type.String(),
			"lead_id": event.LeadID,
		}).Warn("Failed to forward lead event to broker")
	}
}

// Close releases the channel and connection
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	return p.conn.Close()
}
