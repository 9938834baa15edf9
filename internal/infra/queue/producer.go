package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CallEventPayload is what downstream ops consumers see for every dispatch
// outcome and every reconciled webhook event.
type CallEventPayload struct {
	LeadID    string `json:"lead_id"`
	EventType string `json:"event_type"`
	Status    string `json:"status,omitempty"`
	Provider  string `json:"provider,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Origin    string `json:"origin"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishCallEvent(ctx context.Context, payload CallEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal call event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
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
		return fmt.Errorf("failed to publish call event: %w", err)
	}
	return nil
}
