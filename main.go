package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flavorfix/internal/app"
	"flavorfix/internal/config"
	"flavorfix/internal/services"
	"flavorfix/pkg/rabbitmq"
	"flavorfix/pkg/sms"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Storage ---
	stores, err := app.OpenStores(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.SeedProducts {
		if err := app.SeedProducts(context.Background(), stores.Products); err != nil {
			log.Printf("Error seeding products: %v", err)
		}
	}

	// --- Events ---
	mqClient := connectRabbitMQ(cfg)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
		defer mqClient.Close()
	}

	server := app.New(cfg, app.Deps{
		Stores:    stores,
		Sender:    newSender(cfg),
		Publisher: publisher,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s (%s)", cfg.AppPort, cfg.Env)
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newSender picks the SMS provider. MSG91 without credentials falls back to
// logging the code.
func newSender(cfg config.Config) sms.Sender {
	if cfg.SMSProvider == "msg91" {
		if cfg.MSG91AuthKey != "" {
			return sms.NewMSG91Sender(cfg.MSG91AuthKey, cfg.MSG91SenderID)
		}
		log.Println("SMS_PROVIDER=msg91 but MSG91_AUTH_KEY is empty, logging codes instead")
	}
	return sms.LogSender{}
}

// connectRabbitMQ returns nil when events are disabled or the broker is
// unreachable; orders are still accepted without events.
func connectRabbitMQ(cfg config.Config) *rabbitmq.Client {
	if cfg.RabbitMQURL == "" {
		log.Println("RABBITMQ_URL not set, order events disabled")
		return nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Printf("Failed to initialize RabbitMQ client, order events disabled: %v", err)
		return nil
	}
	return client
}
