// handlers/deck_routes.go
package handlers

import (
	"errors"

	"card-jitsu-system/middleware"
	"card-jitsu-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDeckRoutes(app *fiber.App, decks *services.DeckService, jwtSecret []byte) {
	secured := app.Group("/api", middleware.RequireAuth(jwtSecret))

	secured.Get("/user/cards", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		rows, err := decks.Collection(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load collection"})
		}

		payload := make([]fiber.Map, 0, len(rows))
		for _, uc := range rows {
			payload = append(payload, fiber.Map{
				"user_card_id": uc.ID,
				"card_id":      uc.Card.ID,
				"element":      uc.Card.Element,
				"power":        uc.Card.Power,
				"colour":       uc.Card.Colour,
				"name":         uc.Card.Name,
			})
		}
		return c.JSON(fiber.Map{"cards": payload})
	})

	secured.Post("/decks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Name        string   `json:"name"`
			UserCardIDs []string `json:"user_card_ids"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		deck, err := decks.CreateDeck(userID, req.Name, req.UserCardIDs)
		switch {
		case errors.Is(err, services.ErrDeckSize):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "got": len(req.UserCardIDs)})
		case errors.Is(err, services.ErrCardsNotOwned):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create deck"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "deck created",
			"deck":    fiber.Map{"id": deck.ID, "name": deck.Name, "slug": deck.Slug, "is_active": deck.IsActive},
		})
	})

	secured.Get("/decks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		infos, err := decks.ListDecks(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list decks"})
		}
		return c.JSON(fiber.Map{"decks": infos})
	})

	secured.Get("/decks/active", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		deck, cards, err := decks.ActiveDeck(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load active deck"})
		}
		if deck == nil {
			return c.JSON(fiber.Map{"deck": nil})
		}

		return c.JSON(fiber.Map{
			"deck": fiber.Map{
				"id":        deck.ID,
				"name":      deck.Name,
				"slug":      deck.Slug,
				"is_active": deck.IsActive,
				"cards":     cards,
			},
		})
	})

	secured.Post("/decks/:id/activate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		deck, err := decks.ActivateDeck(userID, c.Params("id"))
		if errors.Is(err, services.ErrDeckNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to activate deck"})
		}

		return c.JSON(fiber.Map{
			"message": "deck activated",
			"deck":    fiber.Map{"id": deck.ID, "name": deck.Name, "is_active": deck.IsActive},
		})
	})
}
