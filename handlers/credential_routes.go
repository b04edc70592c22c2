// handlers/credential_routes.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"os"

	"spynet-qr-service/middleware"
	"spynet-qr-service/services"
	"spynet-qr-service/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupCredentialRoutes(app *fiber.App, credService *services.CredentialService, redemptionService *services.RedemptionService, eventService *services.EventService) {
	// 🔐 All QR routes require user context forwarded by the Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/qr/generate", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		var in services.CreateCredentialInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "BAD_REQUEST", "message": "invalid JSON body"},
			})
		}

		cred, signed, err := credService.CreateCredential(playerID, in)
		if err != nil {
			if errors.Is(err, services.ErrUnsupportedType) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"error":   fiber.Map{"code": "INVALID_ARGUMENT", "message": err.Error()},
				})
			}
			log.Printf("❌ [QR] Generate failed for player %s: %v", playerID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "INTERNAL", "message": "failed to generate QR code"},
			})
		}

		png, err := utils.EncodeQRPNG(signed)
		if err != nil {
			log.Printf("❌ [QR] PNG encode failed for %s: %v", cred.Code, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "INTERNAL", "message": "failed to render QR image"},
			})
		}

		// Printable URL: CDN copy when R2 is configured, else the public page.
		printableURL := fmt.Sprintf("%s/qr/%s", os.Getenv("PUBLIC_URL"), cred.Code)
		if utils.R2Enabled() {
			if url, err := utils.UploadBytesToR2(png, utils.QRObjectKey(cred.Code), "image/png"); err != nil {
				log.Printf("⚠️ [QR] R2 upload failed for %s: %v", cred.Code, err)
			} else {
				printableURL = url
			}
		}

		eventService.Log("qr.generated", map[string]interface{}{
			"qr_id": cred.ID,
			"code":  cred.Code,
			"type":  cred.Type,
		}, services.EventActor{PlayerID: &playerID, ZoneID: cred.ZoneID})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":       true,
			"qr":            cred,
			"jwt":           signed,
			"image":         utils.QRDataURL(png),
			"printable_url": printableURL,
		})
	})

	secured.Post("/qr/scan", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		var in services.ScanInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "BAD_REQUEST", "message": "invalid JSON body"},
			})
		}
		if in.JWT == "" || in.Location == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "BAD_REQUEST", "message": "missing jwt or location"},
			})
		}

		result, scanErr := redemptionService.Redeem(playerID, in)
		if scanErr != nil {
			return c.Status(scanErr.Status).JSON(fiber.Map{
				"success": false,
				"error":   scanErr,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    result,
		})
	})

	// Creator/admin lookup — read-only, includes total recorded attempts
	secured.Get("/qr/:code", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)
		code := c.Params("code")

		cred, attempts, err := credService.GetWithStats(code)
		if err != nil {
			if errors.Is(err, services.ErrCredentialNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"success": false,
					"error":   fiber.Map{"code": "NOT_FOUND", "message": "QR code not found"},
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "INTERNAL", "message": "lookup failed"},
			})
		}

		if cred.CreatorPlayerID != playerID && !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "FORBIDDEN", "message": "not the credential creator"},
			})
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"qr":          cred,
			"total_scans": attempts,
		})
	})
}
