package handlers

import (
	"flavorfix/internal/middleware"
	"flavorfix/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service *services.CartService
}

func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes mounts /cart behind guards.
func (h *CartHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	cartRoutes := router.Group("/cart", guards...)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// CartItemRequest adds or re-quantifies a cart line.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, cart)
}

// HandleAddItem adds a product, one unit unless a quantity is given.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ProductID == "" {
		return badRequest("productId is required")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.service.AddItem(c.UserContext(), middleware.CurrentUser(c).ID, req.ProductID, quantity)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Item added to cart", cart, nil)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Quantity == nil {
		return badRequest("Quantity must be at least 1")
	}

	cart, err := h.service.UpdateItem(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"), *req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Cart updated", cart, nil)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Item removed from cart", cart, nil)
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.service.Clear(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Cart cleared", cart, nil)
}
