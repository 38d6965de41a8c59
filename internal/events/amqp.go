package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"moneta/internal/logger"
)

// AMQPPublisher publishes change notifications to a topic exchange.
// Routing keys are "user.<user_id>" so each browser session binds a queue
// for just its own user's events.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewAMQPPublisher connects to the broker and declares the topic exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// PublishTransactionEvent broadcasts a transaction change to the user's
// routing key. Errors are logged and swallowed; the write already committed.
func (p *AMQPPublisher) PublishTransactionEvent(userID, event, transactionID string, version int) {
	msg := TransactionEvent{
		Event:         event,
		TransactionID: transactionID,
		Version:       version,
		Timestamp:     time.Now(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		logger.Get().Errorw("marshal transaction event", "error", err, "event", event)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		"user."+userID, // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Transient,
			Timestamp:    msg.Timestamp,
		},
	)
	if err != nil {
		logger.Get().Errorw("publish transaction event",
			"error", err,
			"event", event,
			"transaction_id", transactionID,
		)
	}
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
