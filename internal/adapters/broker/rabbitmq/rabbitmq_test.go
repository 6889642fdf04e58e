package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pawpals/internal/domain/reminders"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	exchange, key string
	msg           amqp.Publishing
}

func (c *captured) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func TestPublisher_ReminderScheduled(t *testing.T) {
	now := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	ch := &captured{}
	p := &Publisher{channel: ch, exchange: DefaultExchange, now: func() time.Time { return now }}

	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	r := reminders.Reminder{ID: "r1", DogID: "d1", Type: reminders.TypeBath}
	require.NoError(t, p.ReminderScheduled(context.Background(), r, due))

	assert.Equal(t, DefaultExchange, ch.exchange)
	assert.Equal(t, routingKey, ch.key)
	assert.Equal(t, (12 * time.Hour).Milliseconds(), ch.msg.Headers["x-delay"])

	var body ReminderDue
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, "r1", body.ReminderID)
	assert.Equal(t, "bath", body.Type)
	assert.Equal(t, "2024-01-31", body.DueDate)

	// vencido: sin demora
	require.NoError(t, p.ReminderScheduled(context.Background(), r, now.Add(-time.Hour)))
	assert.Equal(t, int64(0), ch.msg.Headers["x-delay"])
}

type fakeAck struct{ acked, nacked, requeued bool }

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()
	body, _ := json.Marshal(ReminderDue{ReminderID: "r1"})

	var got ReminderDue
	a := &fakeAck{}
	deliver(ctx, body, a, func(_ context.Context, m ReminderDue) error { got = m; return nil })
	assert.True(t, a.acked)
	assert.Equal(t, "r1", got.ReminderID)

	a = &fakeAck{}
	deliver(ctx, body, a, func(context.Context, ReminderDue) error { return errors.New("boom") })
	assert.True(t, a.nacked)
	assert.True(t, a.requeued)

	a = &fakeAck{}
	deliver(ctx, []byte("{"), a, func(context.Context, ReminderDue) error {
		t.Fatal("handler must not run")
		return nil
	})
	assert.True(t, a.acked)
}
