// handlers/routes.go
package handlers

import (
	"landmark-quest-system/middleware"
	"landmark-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

type Services struct {
	Players      *services.PlayerService
	Observations *services.ObservationService
	Captures     *services.CaptureService
	Assignments  *services.AssignmentService
	Progress     *services.ProgressService
	Rewards      *services.RewardService
}

// NewApp builds the fiber app. Paths are unescaped before routing so
// percent-encoded landmark, player and clan ids reach handlers decoded.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{UnescapePath: true})
}

// SetupRoutes mounts every player-facing route behind gateway auth and the
// user context.
func SetupRoutes(app *fiber.App, s Services, gatewayToken string) {
	secured := app.Group("/", middleware.GatewayAuthMiddleware(gatewayToken), middleware.UserContextMiddleware())

	SetupPlayerRoutes(secured, s.Players)
	SetupLandmarkRoutes(secured, s.Observations, s.Captures, s.Players)
	SetupQuestRoutes(secured, s.Assignments, s.Progress, s.Rewards)
}
