// handlers/landmarks.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"landmark-quest-system/middleware"
	"landmark-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

type observationRequest struct {
	ExternalIDs []json.RawMessage `json:"external_ids"`
}

type captureRequest struct {
	ExternalID json.RawMessage `json:"external_id"`
}

// landmarkID accepts a JSON string or number; clients send both.
func landmarkID(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}

func SetupLandmarkRoutes(router fiber.Router, observations *services.ObservationService, captures *services.CaptureService, players *services.PlayerService) {
	router.Post("/landmarks/observations", func(c *fiber.Ctx) error {
		var req observationRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if len(req.ExternalIDs) == 0 {
			return badRequest(c, "external_ids must be a non-empty array")
		}

		ids := make([]string, 0, len(req.ExternalIDs))
		skipped := []services.SkippedID{}
		for _, raw := range req.ExternalIDs {
			id, ok := landmarkID(raw)
			if !ok {
				skipped = append(skipped, services.SkippedID{ExternalID: string(raw), Reason: "unsupported id type"})
				continue
			}
			ids = append(ids, id)
		}

		playerID := middleware.PlayerID(c)
		saved := []string{}
		if len(ids) > 0 {
			batch, err := observations.RecordObservations(playerID, ids)
			if err != nil {
				return respondError(c, err)
			}
			saved = batch.Recorded
			skipped = append(skipped, batch.Skipped...)
		} else if _, err := players.GetPlayer(playerID); err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":            true,
			"saved_external_ids": saved,
			"total_saved":        len(saved),
			"skipped":            skipped,
		})
	})

	router.Get("/landmarks/players/:player_id", func(c *fiber.Ctx) error {
		ids, err := observations.ObservedLandmarks(c.Params("player_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "external_ids": ids, "total": len(ids)})
	})

	router.Post("/landmarks/capture", func(c *fiber.Ctx) error {
		var req captureRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		id, ok := landmarkID(req.ExternalID)
		if !ok {
			return badRequest(c, "external_id must be a string or a number")
		}

		player, err := players.GetPlayer(middleware.PlayerID(c))
		if err != nil {
			return respondError(c, err)
		}
		res, err := captures.AttemptCapture(id, player.ID, player.ClanID)
		if err != nil {
			return respondError(c, err)
		}

		if !res.Accepted {
			minutes, seconds := countdown(res.RetryAfter)
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   services.KindConflict,
				"code":    "CAPTURE_COOLDOWN",
				"message": fmt.Sprintf("landmark was captured recently, try again in %d min %d sec", minutes, seconds),
				"details": fiber.Map{
					"minutes_left":        minutes,
					"seconds_left":        seconds,
					"retry_after_seconds": int64(res.RetryAfter.Round(time.Second) / time.Second),
					"current_owner":       res.Owner,
					"clan":                res.Clan,
					"captured_at":         res.CapturedAt,
				},
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":       true,
			"capture":       res.Capture,
			"current_owner": res.Owner,
			"clan":          res.Clan,
			"captured_at":   res.CapturedAt,
		})
	})

	router.Get("/landmarks/:external_id/capture", func(c *fiber.Ctx) error {
		own, err := captures.GetOwnership(c.Params("external_id"))
		if err != nil {
			return respondError(c, err)
		}
		resp := fiber.Map{"success": true, "ownership": own}
		if !own.CanCaptureNow {
			minutes, seconds := countdown(own.RetryAfter)
			resp["minutes_left"], resp["seconds_left"] = minutes, seconds
		}
		return c.JSON(resp)
	})

	router.Get("/landmarks/:external_id/captures", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		history, err := captures.CaptureHistory(c.Params("external_id"), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "captures": history})
	})

	router.Get("/clans/:clan_id/landmarks/count", func(c *fiber.Ctx) error {
		n, err := captures.ClanLandmarkCount(c.Params("clan_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "clan_id": c.Params("clan_id"), "landmarks": n})
	})
}

// countdown splits a wait into whole minutes and leftover seconds, rounding
// up so a client never retries a second early.
func countdown(d time.Duration) (int64, int64) {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return secs / 60, secs % 60
}
