// handlers/quests.go
package handlers

import (
	"landmark-quest-system/middleware"
	"landmark-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

type progressRequest struct {
	Type  string `json:"type"`
	Delta int    `json:"delta"`
}

func SetupQuestRoutes(router fiber.Router, assignments *services.AssignmentService, progress *services.ProgressService, rewards *services.RewardService) {
	router.Get("/quests/daily", func(c *fiber.Ctx) error {
		quests, err := assignments.AssignmentsForToday(middleware.PlayerID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "date": assignments.Today(), "quests": quests})
	})

	router.Get("/quests/progress", func(c *fiber.Ctx) error {
		rows, err := progress.ProgressFor(middleware.PlayerID(c), c.Query("date"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "progress": rows})
	})

	// Used by sibling services for quest types this service does not observe
	// itself (steps, collected coins).
	router.Post("/quests/progress", func(c *fiber.Ctx) error {
		var req progressRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		update, err := progress.ApplyProgress(middleware.PlayerID(c), req.Type, "", req.Delta)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "update": update})
	})

	router.Post("/quests/:quest_id/complete", func(c *fiber.Ctx) error {
		res, err := rewards.CompleteQuest(middleware.PlayerID(c), c.Params("quest_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "result": res})
	})

	router.Get("/quests/promo-codes", func(c *fiber.Ctx) error {
		grants, err := rewards.PromoCodes(middleware.PlayerID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "promo_codes": grants})
	})
}
