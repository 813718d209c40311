package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kuzeykoc/pkg/config"
	"kuzeykoc/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ActivityQueueName  = "activity_queue"
	ActivityExchange   = "student_activity"
	ActivityRoutingKey = "activity"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange for student activity events
	err = channel.ExchangeDeclare(
		ActivityExchange, // name
		"direct",         // type
		true,             // durable
		false,            // auto-deleted
		false,            // internal
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		ActivityQueueName, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		ActivityQueueName,  // queue name
		ActivityRoutingKey, // routing key
		ActivityExchange,   // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishActivityTask publishes a student activity task to the exchange.
// Producers (the CRUD services) call this when a student adds a log,
// completes homework or records a trial exam.
func (c *Client) PublishActivityTask(task map[string]interface{}) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(ctx,
		ActivityExchange,
		ActivityRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}

	return nil
}

// ConsumeActivityTasks delivers queued tasks to the handler one at a time.
// A handler error leaves the message un-acked so it is redelivered.
func (c *Client) ConsumeActivityTasks(handler func(task map[string]interface{}) error) error {
	msgs, err := c.channel.Consume(
		ActivityQueueName, // queue
		"",                // consumer
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for msg := range msgs {
		var task map[string]interface{}
		if err := json.Unmarshal(msg.Body, &task); err != nil {
			c.logger.Error("Failed to unmarshal activity task: %v", err)
			msg.Nack(false, false)
			continue
		}

		if err := handler(task); err != nil {
			c.logger.Error("Activity task handler failed: %v", err)
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)
	}

	return nil
}

func (c *Client) GetQueueLength() (int, error) {
	q, err := c.channel.QueueInspect(ActivityQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue: %w", err)
	}
	return q.Messages, nil
}
