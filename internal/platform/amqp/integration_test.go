package amqp

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/snapsolve/snapsolve/internal/ciutil"
	"github.com/snapsolve/snapsolve/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherDeliversToBoundQueue(t *testing.T) {
	url := ciutil.TestAMQPURL(testLogger())
	ciutil.RequireService(t, "amqp", url)

	exchange := fmt.Sprintf("snapsolve-test-%d", time.Now().UnixNano())
	p, err := Dial(url, exchange, testLogger())
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer func() { _ = ch.ExchangeDelete(exchange, false, false) }()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "progress.#", exchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	event, err := events.NewEvent(events.TypeStreakUpdated,
		events.StreakUpdatedPayload{UserID: "u", Streak: 3},
		time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, p.HandleEvent(context.Background(), event))

	select {
	case d := <-deliveries:
		assert.Equal(t, events.TypeStreakUpdated, d.RoutingKey)
		assert.Equal(t, event.ID.String(), d.MessageId)
		assert.Equal(t, "application/json", d.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery received")
	}
}
