package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"pawpals/internal/domain/reminders"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher implementa reminders.Notifier.
type Publisher struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	now      func() time.Time
}

func NewPublisher(cfg Config) (*Publisher, error) {
	cfg = cfg.withDefaults()
	conn, ch, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: cfg.Exchange, now: time.Now}, nil
}

// ReminderScheduled publica el aviso con x-delay hasta dueAt (0 si ya venció).
func (p *Publisher) ReminderScheduled(ctx context.Context, r reminders.Reminder, dueAt time.Time) error {
	now := p.now()
	body, err := json.Marshal(ReminderDue{
		ReminderID:  r.ID,
		DogID:       r.DogID,
		Type:        string(r.Type),
		DueDate:     dueAt.Format(time.DateOnly),
		ScheduledAt: now.UTC(),
	})
	if err != nil {
		return err
	}

	delay := dueAt.Sub(now).Milliseconds()
	if delay < 0 {
		delay = 0
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    r.ID,
			Body:         body,
			Headers:      amqp.Table{"x-delay": delay},
		},
	)
}

func (p *Publisher) Close() error {
	if c, ok := p.channel.(*amqp.Channel); ok && c != nil {
		c.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
