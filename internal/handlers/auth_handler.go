package handlers

import (
	"flavorfix/internal/middleware"
	"flavorfix/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for phone and OTP authentication.
type AuthHandler struct {
	authService *services.AuthService
	// exposeCode echoes the issued code as testOtp; development only.
	exposeCode bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, exposeCode bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		exposeCode:  exposeCode,
	}
}

// RegisterRoutes registers the authentication routes. requireAuth guards
// the profile and logout endpoints.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/send-otp", h.HandleSendOTP)
	authRoutes.Post("/verify-otp", h.HandleVerifyOTP)
	authRoutes.Post("/resend-otp", h.HandleResendOTP)
	authRoutes.Get("/profile", requireAuth, h.HandleProfile)
	authRoutes.Post("/logout", requireAuth, h.HandleLogout)
}

// SendOTPRequest starts a login or a registration.
type SendOTPRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// VerifyOTPRequest completes a login.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) codeResponse(issued *services.CodeIssued) fiber.Map {
	data := fiber.Map{
		"phone":          issued.User.Phone,
		"name":           issued.User.Name,
		"isExistingUser": issued.ExistingUser,
	}
	if h.exposeCode {
		data["testOtp"] = issued.Code
	}
	return data
}

// HandleSendOTP issues a code, creating the account on first contact.
func (h *AuthHandler) HandleSendOTP(c *fiber.Ctx) error {
	var req SendOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issued, err := h.authService.RequestCode(c.UserContext(), req.Name, req.Phone)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "OTP sent successfully", h.codeResponse(issued), nil)
}

// HandleResendOTP replaces the pending code of an existing user.
func (h *AuthHandler) HandleResendOTP(c *fiber.Ctx) error {
	var req SendOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issued, err := h.authService.ResendCode(c.UserContext(), req.Phone)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "OTP resent successfully", h.codeResponse(issued), nil)
}

// HandleVerifyOTP checks the code and issues a session token.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Phone == "" || req.OTP == "" {
		return badRequest("Please provide phone and OTP")
	}

	session, err := h.authService.VerifyCode(c.UserContext(), req.Phone, req.OTP)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":  session.User,
		"token": session.Token,
	}, nil)
}

// HandleProfile returns the authenticated user.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	user, err := h.authService.Profile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, user)
}

// HandleLogout is stateless: the client discards its token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Logged out successfully", nil, nil)
}
