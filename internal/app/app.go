// Package app wires repositories, services and handlers into a fiber app.
package app

import (
	"fmt"
	"log"
	"time"

	"flavorfix/internal/config"
	"flavorfix/internal/handlers"
	"flavorfix/internal/middleware"
	"flavorfix/internal/repositories"
	"flavorfix/internal/services"
	"flavorfix/pkg/sms"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Stores bundles one implementation of every repository.
type Stores struct {
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Carts    repositories.CartRepository
	Orders   repositories.OrderRepository
	Feedback repositories.FeedbackRepository

	// DB is nil for the in-memory driver.
	DB *gorm.DB
}

// Close releases the database pool, if any.
func (s Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return repositories.CloseDatabase(s.DB)
}

// OpenStores selects the storage backend named by cfg.StorageDriver.
func OpenStores(cfg config.Config) (Stores, error) {
	switch cfg.StorageDriver {
	case "memory":
		return MemoryStores(), nil
	case "postgres", "sqlite":
		db, err := repositories.OpenDatabase(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return Stores{}, err
		}
		return GORMStores(db), nil
	default:
		return Stores{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func GORMStores(db *gorm.DB) Stores {
	return Stores{
		Users:    repositories.NewGORMUserRepository(db),
		Products: repositories.NewGORMProductRepository(db),
		Carts:    repositories.NewGORMCartRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
		Feedback: repositories.NewGORMFeedbackRepository(db),
		DB:       db,
	}
}

func MemoryStores() Stores {
	return Stores{
		Users:    repositories.NewMemoryUserRepository(),
		Products: repositories.NewMemoryProductRepository(),
		Carts:    repositories.NewMemoryCartRepository(),
		Orders:   repositories.NewMemoryOrderRepository(),
		Feedback: repositories.NewMemoryFeedbackRepository(),
	}
}

// Deps are the collaborators New needs besides configuration.
type Deps struct {
	Stores    Stores
	Sender    sms.Sender
	Publisher services.EventPublisher // nil disables order events
}

// New builds the HTTP application.
func New(cfg config.Config, deps Deps) *fiber.App {
	s := deps.Stores

	authService := services.NewAuthService(s.Users, deps.Sender, cfg.JWTSecret, cfg.JWTExpire, cfg.OTP)
	productService := services.NewProductService(s.Products)
	cartService := services.NewCartService(s.Carts, s.Products)
	orderService := services.NewOrderService(s.Orders, s.Carts, s.Products, s.Users, deps.Publisher, cfg.Order)
	addressService := services.NewAddressService(s.Users)
	adminService := services.NewAdminService(s.Products, s.Orders, s.Users)
	feedbackService := services.NewFeedbackService(s.Feedback, s.Orders)

	authHandler := handlers.NewAuthHandler(authService, cfg.IsDevelopment())
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	addressHandler := handlers.NewAddressHandler(addressService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	adminHandler := handlers.NewAdminHandler(adminService, productHandler, orderHandler, feedbackHandler)

	app := fiber.New(fiber.Config{
		AppName:      "FlavorFix API",
		ErrorHandler: handlers.ErrorHandler(!cfg.IsProduction()),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New()) // Request logger

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"storage": cfg.StorageDriver,
			"events":  deps.Publisher != nil,
		})
	})

	requireAuth := middleware.AuthRequired(authService)
	optionalAuth := middleware.AuthOptional(authService)
	requireAdmin := middleware.AdminRequired()

	api := app.Group("/api")
	authHandler.RegisterRoutes(api, requireAuth)
	productHandler.RegisterRoutes(api, requireAuth, requireAdmin)
	feedbackHandler.RegisterRoutes(api, optionalAuth)
	adminHandler.RegisterRoutes(api, requireAuth, requireAdmin)

	cartHandler.RegisterRoutes(api, requireAuth)
	orderHandler.RegisterRoutes(api, requireAuth)
	addressHandler.RegisterRoutes(api, requireAuth)

	log.Printf("Routes registered (storage=%s, events=%t)", cfg.StorageDriver, deps.Publisher != nil)
	return app
}
