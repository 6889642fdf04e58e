package rabbitmq

import (
	"context"
	"encoding/json"

	"pawpals/internal/platform/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler procesa un aviso vencido; si devuelve error el mensaje se reencola.
type Handler func(ctx context.Context, msg ReminderDue) error

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewConsumer(cfg Config) (*Consumer, error) {
	cfg = cfg.withDefaults()
	conn, ch, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{conn: conn, channel: ch, queue: cfg.Queue}, nil
}

// Run consume hasta que ctx se cancele o el canal se cierre.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return err
	}
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			deliver(ctx, d.Body, d, handle)
		}
	}
}

type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// deliver: JSON inválido => ack (no tiene sentido reintentar); error del handler => nack con requeue.
func deliver(ctx context.Context, body []byte, ack acker, handle Handler) {
	log := logger.FromContext(ctx)

	var msg ReminderDue
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Warn("discarding malformed reminder message", map[string]any{"error": err})
		_ = ack.Ack(false)
		return
	}
	if err := handle(ctx, msg); err != nil {
		log.Error("reminder handler failed", map[string]any{"reminder_id": msg.ReminderID, "error": err})
		_ = ack.Nack(false, true)
		return
	}
	_ = ack.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
