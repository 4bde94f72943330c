package handlers

import (
	"errors"
	"log"

	"flavorfix/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respond writes the standard {"success", "message", "data"} envelope.
// Extra top-level keys (count, total, ...) are merged in.
func respond(c *fiber.Ctx, status int, message string, data any, extra fiber.Map) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func ok(c *fiber.Ctx, data any) error {
	return respond(c, fiber.StatusOK, "", data, nil)
}

func created(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusCreated, message, data, nil)
}

func badRequest(message string) error {
	return apperrors.Validation("%s", message)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return apperrors.Validation("Invalid request body")
	}
	return nil
}

// ErrorHandler turns errors returned by handlers and middleware into the
// response envelope. With showDetails unset, internal failures carry no detail.
func ErrorHandler(showDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal {
			body := fiber.Map{"success": false, "message": appErr.Message}
			for k, v := range appErr.Fields {
				body[k] = v
			}
			return c.Status(apperrors.HTTPStatus(appErr.Kind)).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		log.Printf("Error handling %s %s: %v", c.Method(), c.OriginalURL(), err)
		body := fiber.Map{"success": false, "message": "Server error"}
		if showDetails {
			body["error"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
