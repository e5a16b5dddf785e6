// handlers/card_routes.go
package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"card-jitsu-system/middleware"
	"card-jitsu-system/services"
	"card-jitsu-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupCardRoutes(app *fiber.App, catalog *services.CatalogService, leaderboard *services.LeaderboardService, jwtSecret []byte) {
	// Catalog and leaderboard are public read-only data.
	app.Get("/api/cards", func(c *fiber.Ctx) error {
		cards, err := catalog.ListCards()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list cards"})
		}
		return c.JSON(fiber.Map{"cards": cards})
	})

	app.Get("/api/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		entries, err := leaderboard.Top(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
		}
		return c.JSON(fiber.Map{"leaderboard": entries})
	})

	secured := app.Group("/api", middleware.RequireAuth(jwtSecret))

	// Artwork upload for a catalog card. The image lands in object storage;
	// only the resulting URL is persisted.
	secured.Post("/cards/:id/artwork", func(c *fiber.Ctx) error {
		cardID, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid card id"})
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file field required"})
		}

		key := fmt.Sprintf("%d%s", cardID, filepath.Ext(fileHeader.Filename))
		url, err := utils.UploadCardArt(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed", "cause": err.Error()})
		}

		if err := catalog.SetArtwork(uint(cardID), url); err != nil {
			if errors.Is(err, services.ErrInvalidCard) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save artwork"})
		}

		return c.JSON(fiber.Map{"message": "artwork uploaded", "artwork_url": url})
	})
}
