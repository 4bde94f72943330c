package handlers

import (
	"flavorfix/internal/middleware"
	"flavorfix/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles the authenticated user's address book.
type AddressHandler struct {
	service *services.AddressService
}

func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// RegisterRoutes mounts /users/addresses behind guards.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	addressRoutes := router.Group("/users/addresses", guards...)
	addressRoutes.Get("/", h.HandleList)
	addressRoutes.Post("/", h.HandleAdd)
	addressRoutes.Put("/:id", h.HandleUpdate)
	addressRoutes.Delete("/:id", h.HandleDelete)
	addressRoutes.Put("/:id/default", h.HandleSetDefault)
}

func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	addresses, err := h.service.List(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, addresses)
}

// HandleAdd responds with the new address only.
func (h *AddressHandler) HandleAdd(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	addresses, err := h.service.Add(c.UserContext(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return err
	}
	return created(c, "", addresses[len(addresses)-1])
}

func (h *AddressHandler) HandleUpdate(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	addresses, err := h.service.Update(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, addresses)
}

func (h *AddressHandler) HandleDelete(c *fiber.Ctx) error {
	addresses, err := h.service.Delete(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Address deleted successfully", addresses, nil)
}

func (h *AddressHandler) HandleSetDefault(c *fiber.Ctx) error {
	addresses, err := h.service.SetDefault(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Default address updated", addresses, nil)
}
