package services

import (
	"encoding/json"
	"log"
	"time"

	"flavorfix/internal/models"
	"flavorfix/pkg/rabbitmq"
)

// EventPublisher is implemented by *rabbitmq.Client.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// publishOrderEvent is best effort: a publish failure never fails the request.
func publishOrderEvent(pub EventPublisher, routingKey string, order *models.Order, note string, at time.Time) {
	if pub == nil {
		log.Printf("Event publisher is not configured. Skipping %s for order %s.", routingKey, order.ID)
		return
	}

	items := 0
	for _, item := range order.Items {
		items += item.Quantity
	}
	body, err := json.Marshal(rabbitmq.OrderEvent{
		Type:       routingKey,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		Items:      items,
		Note:       note,
		OccurredAt: at,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", routingKey, order.ID, err)
		return
	}

	if err := pub.Publish(rabbitmq.OrdersExchange, routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", routingKey, order.ID, err)
	}
}
