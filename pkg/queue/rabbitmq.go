package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storynest/pkg/config"
	"storynest/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotificationQueueName = "notification_tasks"
	NotificationExchange  = "notifications"
	NotificationRouteKey  = "notification.task"

	maxPriority = 10
)

type TaskType string

const (
	// TaskNotification delivers one notification to each listed user.
	TaskNotification TaskType = "notification"
	// TaskBroadcast delivers to the listed users, or to everyone when All is set.
	TaskBroadcast TaskType = "broadcast"
	// TaskFeedbackResponse tells a feedback author that an admin replied.
	TaskFeedbackResponse TaskType = "feedback_response"
)

type Task struct {
	Type             TaskType `json:"type"`
	UserIDs          []string `json:"user_ids,omitempty"`
	All              bool     `json:"all,omitempty"`
	Title            string   `json:"title,omitempty"`
	Message          string   `json:"message,omitempty"`
	NotificationType string   `json:"notification_type,omitempty"`
	FeedbackID       string   `json:"feedback_id,omitempty"`
	ContentID        string   `json:"content_id,omitempty"`
	Priority         int      `json:"priority,omitempty"`
}

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

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func declareTopology(channel *amqp.Channel) error {
	if err := channel.ExchangeDeclare(
		NotificationExchange, // name
		"direct",             // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := channel.QueueDeclare(
		NotificationQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-max-priority": maxPriority},
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(NotificationQueueName, NotificationRouteKey, NotificationExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
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

// Publish enqueues a task as a persistent message.
func (c *Client) Publish(ctx context.Context, task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		NotificationExchange,
		NotificationRouteKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Priority:     clampPriority(task.Priority),
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s task: %v", task.Type, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s task to %s", task.Type, NotificationQueueName)
	return nil
}

// Consume delivers tasks to handler until ctx is done or the channel closes.
// Malformed messages are dropped; handler failures are requeued once.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, Task) error) error {
	msgs, err := c.channel.Consume(
		NotificationQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from %s", NotificationQueueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("[RABBITMQ] Delivery channel closed")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, Task) error) {
	task, err := DecodeTask(msg.Body)
	if err != nil {
		c.logger.Error("[RABBITMQ] Dropping malformed task: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, task); err != nil {
		c.logger.Error("[RABBITMQ] Handler failed for %s task: %v", task.Type, err)
		msg.Nack(false, !msg.Redelivered)
		return
	}

	msg.Ack(false)
}

func (c *Client) QueueLength() (int, error) {
	q, err := c.channel.QueueInspect(NotificationQueueName)
	if err != nil {
		return 0, err
	}
	return q.Messages, nil
}

func DecodeTask(body []byte) (Task, error) {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return Task{}, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if task.Type == "" {
		return Task{}, fmt.Errorf("task has no type")
	}
	return task, nil
}

func clampPriority(p int) uint8 {
	switch {
	case p <= 0:
		return 1
	case p > maxPriority:
		return maxPriority
	default:
		return uint8(p)
	}
}
