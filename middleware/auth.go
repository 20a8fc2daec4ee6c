// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const playerIDLocal = "player_id"

// UserContextMiddleware reads the player identity the gateway resolved from
// the client's JWT. Requests without X-User-ID are rejected.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		playerID := strings.TrimSpace(c.Get("X-User-ID"))
		if playerID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID missing on %s", c.Path())
			return unauthorized(c, "missing X-User-ID, request must come through gateway with auth context")
		}
		c.Locals(playerIDLocal, playerID)
		return c.Next()
	}
}

// PlayerID returns the id set by UserContextMiddleware, or "".
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(playerIDLocal).(string)
	return id
}
