package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// шаблоны событий (routing key в topic exchange)
const (
	OrderCreated           = "order.created"
	CryptoIntentCreated    = "crypto.intent.created"
	CryptoPaymentConfirmed = "crypto.payment.confirmed"
)

// Publisher публикует доменные события. Ошибка публикации не должна ломать запрос.
type Publisher interface {
	Publish(ctx context.Context, pattern string, data any) error
}

// NopPublisher используется, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Message - конверт события
type Message struct {
	ID         string    `json:"id"`
	Pattern    string    `json:"pattern"`
	Data       any       `json:"data"`
	OccurredAt time.Time `json:"occurred_at"`
}

func encodeMessage(pattern string, data any, now time.Time) ([]byte, error) {
	return json.Marshal(Message{
		ID:         uuid.NewString(),
		Pattern:    pattern,
		Data:       data,
		OccurredAt: now.UTC(),
	})
}

type AMQPPublisher struct {
	log      *slog.Logger
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher подключается к RabbitMQ и объявляет durable topic exchange
func NewAMQPPublisher(log *slog.Logger, amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{
		log:      log,
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, pattern string, data any) error {
	body, err := encodeMessage(pattern, data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,
		pattern,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.Debug("event published", slog.String("pattern", pattern), slog.String("exchange", p.exchange))
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
