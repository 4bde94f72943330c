package rabbitmq_test

import (
	"encoding/json"
	"testing"
	"time"

	"flavorfix/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrderEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(rabbitmq.OrderEvent{
		Type:       rabbitmq.RoutingOrderCreated,
		OrderID:    "order-1",
		UserID:     "user-1",
		Status:     "pending",
		TotalPrice: 140,
		Items:      1,
		OccurredAt: at,
	})
	require.NoError(t, err)

	evt, err := rabbitmq.DecodeOrderEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "order-1", evt.OrderID)
	assert.Equal(t, 140.0, evt.TotalPrice)
	assert.True(t, at.Equal(evt.OccurredAt))
}

func TestDecodeOrderEvent_Invalid(t *testing.T) {
	_, err := rabbitmq.DecodeOrderEvent([]byte("not json"))
	assert.ErrorContains(t, err, "failed to decode")

	_, err = rabbitmq.DecodeOrderEvent([]byte(`{"type":"order.created"}`))
	assert.ErrorContains(t, err, "without order id")
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &rabbitmq.Client{}
	err := c.Publish(rabbitmq.OrdersExchange, rabbitmq.RoutingOrderCreated, []byte("{}"))
	assert.ErrorContains(t, err, "channel is not available")
}
