package handlers

import (
	"flavorfix/internal/middleware"
	"flavorfix/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler accepts customer feedback and exposes its triage to admins.
type FeedbackHandler struct {
	service *services.FeedbackService
}

func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// RegisterRoutes registers the submission route; optionalAuth attaches the
// caller when a token is present.
func (h *FeedbackHandler) RegisterRoutes(router fiber.Router, optionalAuth fiber.Handler) {
	router.Post("/feedback", optionalAuth, h.HandleSubmit)
}

// RegisterAdminRoutes expects router to be behind AdminRequired.
func (h *FeedbackHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/feedback", h.HandleList)
	router.Put("/feedback/:id/status", h.HandleUpdateStatus)
}

func (h *FeedbackHandler) HandleSubmit(c *fiber.Ctx) error {
	var in services.FeedbackInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	fb, err := h.service.Submit(c.UserContext(), middleware.CurrentUser(c), in)
	if err != nil {
		return err
	}
	return created(c, "Thank you for your feedback", fb)
}

func (h *FeedbackHandler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", list, fiber.Map{"count": len(list)})
}

// FeedbackStatusRequest moves feedback through triage.
type FeedbackStatusRequest struct {
	Status string `json:"status"`
}

func (h *FeedbackHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req FeedbackStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	fb, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return ok(c, fb)
}
