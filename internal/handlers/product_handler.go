package handlers

import (
	"flavorfix/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the public catalog routes and the admin-only
// write routes behind guards.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/categories", h.HandleGetCategories)
	productRoutes.Get("/featured", h.HandleGetFeatured)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	productRoutes.Post("/", guarded(guards, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", guarded(guards, h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", guarded(guards, h.HandleDeleteProduct)...)
}

// guarded chains guards in front of a single route handler.
func guarded(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	return append(append(chain, guards...), handler)
}

// HandleGetProducts lists one page of the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var q services.ProductQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest("Invalid query parameters")
	}

	page, err := h.service.ListProducts(c.UserContext(), q)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", page.Products, fiber.Map{
		"count": len(page.Products),
		"total": page.Total,
		"page":  page.Page,
		"pages": page.Pages,
	})
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, product)
}

func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, categories)
}

func (h *ProductHandler) HandleGetFeatured(c *fiber.Ctx) error {
	products, err := h.service.Featured(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, products)
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, "", product)
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product deleted successfully", nil, nil)
}
