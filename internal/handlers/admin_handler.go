package handlers

import (
	"flavorfix/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the back-office dashboard and user management. Product,
// order and feedback management reuse their own handlers.
type AdminHandler struct {
	service  *services.AdminService
	products *ProductHandler
	orders   *OrderHandler
	feedback *FeedbackHandler
}

func NewAdminHandler(service *services.AdminService, products *ProductHandler, orders *OrderHandler, feedback *FeedbackHandler) *AdminHandler {
	return &AdminHandler{
		service:  service,
		products: products,
		orders:   orders,
		feedback: feedback,
	}
}

// RegisterRoutes mounts /admin behind guards (AuthRequired then AdminRequired).
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	adminRoutes := router.Group("/admin", guards...)
	adminRoutes.Get("/dashboard", h.HandleDashboard)

	adminRoutes.Get("/products", h.HandleListProducts)
	adminRoutes.Post("/products", h.products.HandleCreateProduct)
	adminRoutes.Put("/products/:id", h.products.HandleUpdateProduct)
	adminRoutes.Delete("/products/:id", h.products.HandleDeleteProduct)

	h.orders.RegisterAdminRoutes(adminRoutes)
	h.feedback.RegisterAdminRoutes(adminRoutes)

	adminRoutes.Get("/users", h.HandleListUsers)
	adminRoutes.Put("/users/:id/role", h.HandleUpdateUserRole)
}

func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	dash, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, dash)
}

func (h *AdminHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, products)
}

func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, users)
}

// RoleRequest changes a user's role.
type RoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) HandleUpdateUserRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateUserRole(c.UserContext(), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return ok(c, user)
}
