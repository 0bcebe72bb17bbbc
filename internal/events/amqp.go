package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finova/internal/logger"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// eventsExchangeSuffix names the topic exchange domain events go to,
// e.g. "finova.events".
const eventsExchangeSuffix = ".events"

// Client publishes events to a topic exchange and jobs to a durable queue
// bound to a direct exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

var (
	_ Publisher = (*Client)(nil)
	_ JobQueue  = (*Client)(nil)
)

// NewClient dials url and declares the exchanges and job queue.
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
		return fmt.Errorf("declare job exchange: %w", err)
	}
	if err := c.channel.ExchangeDeclare(c.exchangeName+eventsExchangeSuffix, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name for the direct exchange.
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return c.channel.Qos(1, 0, false)
}

// Publish sends event to the events exchange, routed by its type.
func (c *Client) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := c.publish(ctx, c.exchangeName+eventsExchangeSuffix, string(event.Type), event.ID, body); err != nil {
		return err
	}
	logger.Get().Debugw("published event", "type", event.Type, "id", event.ID)
	return nil
}

// Enqueue sends job to the job queue.
func (c *Client) Enqueue(ctx context.Context, job Job) error {
	body, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := c.publish(ctx, c.exchangeName, c.queueName, job.ID, body); err != nil {
		return err
	}
	logger.Get().Infow("enqueued job", "kind", job.Kind, "id", job.ID, "queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, exchange, routingKey, messageID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// JobHandler processes one job. Returning an error requeues the message.
type JobHandler func(ctx context.Context, job Job) error

// Consume delivers jobs to handler until ctx is done. Malformed messages are
// dropped; handler failures are requeued once and then dropped.
func (c *Client) Consume(ctx context.Context, handler JobHandler) error {
	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.Named("amqp")
	log.Infow("started consuming jobs", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			log.Infow("stopping job consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.handle(ctx, delivery, handler)
		}
	}
}

func (c *Client) handle(ctx context.Context, delivery amqp091.Delivery, handler JobHandler) {
	log := logger.Named("amqp")

	job, err := JobFromJSON(delivery.Body)
	if err != nil {
		log.Errorw("failed to decode job", "error", err)
		_ = delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, job); err != nil {
		requeue := !delivery.Redelivered
		log.Errorw("job failed", "kind", job.Kind, "id", job.ID, "error", err, "requeue", requeue)
		_ = delivery.Nack(false, requeue)
		return
	}

	_ = delivery.Ack(false)
	log.Infow("job processed", "kind", job.Kind, "id", job.ID)
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
