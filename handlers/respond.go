// handlers/respond.go
package handlers

import (
	"log"

	"landmark-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

var statusByKind = map[services.Kind]int{
	services.KindNotFound:             fiber.StatusNotFound,
	services.KindConflict:             fiber.StatusConflict,
	services.KindInvalid:              fiber.StatusBadRequest,
	services.KindInsufficientResource: fiber.StatusUnprocessableEntity,
	services.KindInternal:             fiber.StatusInternalServerError,
}

func respondError(c *fiber.Ctx, err error) error {
	e := services.AsError(err)
	status, ok := statusByKind[e.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ [HTTP] %s %s: %v", c.Method(), c.Path(), err)
		e = services.ErrInternal
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   e.Kind,
		"code":    e.Code,
		"message": e.Message,
		"details": e.Details,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   services.KindInvalid,
		"code":    services.ErrInvalid.Code,
		"message": msg,
	})
}
