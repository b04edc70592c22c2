// handlers/player_routes.go
package handlers

import (
	"spynet-qr-service/middleware"
	"spynet-qr-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/player/summary", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		summary, err := playerService.GetSummary(playerID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "INTERNAL", "message": "failed to load player summary"},
			})
		}

		return c.JSON(fiber.Map{
			"success":            true,
			"profile":            summary.Profile,
			"xp":                 summary.Profile.XP,
			"credits":            summary.Profile.Credits,
			"missions_completed": summary.MissionsCompleted,
			"missions_failed":    summary.MissionsFailed,
			"missions_active":    summary.MissionsActive,
			"total_scans":        summary.TotalScans,
			"xp_from_scans":      summary.XPFromScans,
			"credits_from_scans": summary.CreditsFromScans,
		})
	})
}
