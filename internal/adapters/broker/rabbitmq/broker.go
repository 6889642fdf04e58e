// Package rabbitmq publica avisos de recordatorio como mensajes diferidos
// (exchange x-delayed-message) y los consume en el worker.
package rabbitmq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "reminder_due_exchange"
	DefaultQueue    = "reminder_due_queue"
	routingKey      = "reminder_due"
)

type Config struct {
	URL      string
	Exchange string
	Queue    string
}

func (c Config) withDefaults() Config {
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.Queue == "" {
		c.Queue = DefaultQueue
	}
	return c
}

// ReminderDue es el cuerpo JSON de cada mensaje.
type ReminderDue struct {
	ReminderID  string    `json:"reminder_id"`
	DogID       string    `json:"dog_id"`
	Type        string    `json:"reminder_type"`
	DueDate     string    `json:"due_date"` // YYYY-MM-DD
	ScheduledAt time.Time `json:"scheduled_at"`
}

// connect abre conexión y canal y declara exchange, cola y binding.
func connect(cfg Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	fail := func(err error) (*amqp.Connection, *amqp.Channel, error) {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		return fail(err)
	}
	if _, err = ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fail(err)
	}
	if err = ch.QueueBind(cfg.Queue, routingKey, cfg.Exchange, false, nil); err != nil {
		return fail(err)
	}
	return conn, ch, nil
}
