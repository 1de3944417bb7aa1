package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Client publishes and consumes budget alerts over AMQP.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewClient dials the broker and declares the exchange, queue and binding.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return client, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Direct exchange: the queue name doubles as the routing key.
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends a persistent BudgetExceeded message.
func (c *Client) Publish(ctx context.Context, msg BudgetExceeded) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("budget_id", msg.BudgetID).
		Str("exchange", c.exchangeName).
		Str("queue", c.queueName).
		Msg("published budget alert")
	return nil
}

// Handler processes one alert. A returned error requeues the delivery.
type Handler func(ctx context.Context, msg BudgetExceeded) error

// Consume delivers alerts to handler with manual acknowledgement until ctx
// is cancelled or the channel closes.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Str("queue", c.queueName).Msg("consuming budget alerts")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Err(ctx.Err()).Msg("stopping alert consumption")
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

func handleDelivery(ctx context.Context, d amqp091.Delivery, handler Handler) {
	logger := zerolog.Ctx(ctx)

	msg, err := BudgetExceededFromJSON(d.Body)
	if err != nil {
		logger.Error().Err(err).Msg("drop malformed budget alert")
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, msg); err != nil {
		logger.Error().Err(err).Int64("budget_id", msg.BudgetID).Msg("handle budget alert")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
