// Command order-events consumes order lifecycle events from RabbitMQ and
// logs them. It is the reference consumer for the orders exchange.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"flavorfix/internal/config"
	"flavorfix/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer client.Close()

	done, err := client.ConsumeOrderEvents(logEvent)
	if err != nil {
		log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
	}
	log.Printf("Consuming order events from %s", rabbitmq.OrderQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Shutting down consumer...")
	case <-done:
		log.Println("Delivery channel closed by broker")
	}
}

func logEvent(evt rabbitmq.OrderEvent) error {
	log.Printf("Order event %s: order=%s user=%s status=%s total=%.2f items=%d note=%q",
		evt.Type, evt.OrderID, evt.UserID, evt.Status, evt.TotalPrice, evt.Items, evt.Note)
	return nil
}
