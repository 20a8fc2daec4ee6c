// handlers/players.go
package handlers

import (
	"strings"

	"landmark-quest-system/middleware"
	"landmark-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(router fiber.Router, players *services.PlayerService) {
	router.Get("/players/me", func(c *fiber.Ctx) error {
		p, err := players.GetPlayer(middleware.PlayerID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "player": players.StatsOf(p)})
	})

	// The gateway calls this right after registration so the player can play
	// before the next profile sync.
	router.Put("/players/me", func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		p, err := players.EnsurePlayer(middleware.PlayerID(c), strings.TrimSpace(req.Username))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "player": players.StatsOf(p)})
	})
}
