package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"guestdesk/internal/model"
)

// CuratedPublisher pushes curated guest messages onto the persist
// queue so the review copy is written off the request path.
type CuratedPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewCuratedPublisher(conn *amqp.Connection, queueName string) *CuratedPublisher {
	return &CuratedPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *CuratedPublisher) Publish(ctx context.Context, msg model.CuratedMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal curated payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish curated message failed: %w", err)
	}
	return nil
}
