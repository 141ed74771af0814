package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/config"
)

// AMQPPublisher mirrors domain events onto a durable RabbitMQ queue so
// external consumers (display boards, audit) can follow the ticket flow.
// Publish failures are logged and swallowed; the request path never
// depends on the broker.
type AMQPPublisher struct {
	cfg    config.AMQPConfig
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher creates a publisher. When no URL is configured the
// publisher stays inert.
func NewAMQPPublisher(cfg config.AMQPConfig, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{cfg: cfg, logger: logger}
}

// Register subscribes the publisher to every event type.
func (p *AMQPPublisher) Register(dispatcher Dispatcher) {
	if p == nil || dispatcher == nil || p.cfg.URL == "" {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.handle)
	}
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("amqp: marshal event failed", zap.Error(err))
		return nil
	}

	channel, err := p.ensureChannel()
	if err != nil {
		p.logger.Warn("amqp: broker unavailable", zap.Error(err))
		return nil
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := channel.PublishWithContext(ctx, "", p.cfg.QueueName, false, false, pub); err != nil {
		p.logger.Warn("amqp: publish failed", zap.Error(err))
		p.reset()
	}
	return nil
}

func (p *AMQPPublisher) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		return p.channel, nil
	}

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Durable queue; messages survive broker restarts.
	if _, err := channel.QueueDeclare(p.cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	p.conn = conn
	p.channel = channel
	return p.channel, nil
}

func (p *AMQPPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
