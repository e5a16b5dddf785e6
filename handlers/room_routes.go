// handlers/room_routes.go
package handlers

import (
	"errors"

	"card-jitsu-system/middleware"
	"card-jitsu-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRoomRoutes(app *fiber.App, rooms *services.RoomService, match *services.MatchService, jwtSecret []byte) {
	secured := app.Group("/api", middleware.RequireAuth(jwtSecret))

	secured.Post("/rooms", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		room, err := rooms.CreateRoom(userID)
		if errors.Is(err, services.ErrNoActiveDeck) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "you must have an active deck to create a room"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create room"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "room created",
			"room":    fiber.Map{"id": room.ID, "room_code": room.Code, "status": room.Status},
		})
	})

	secured.Post("/rooms/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			RoomCode string `json:"room_code"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.RoomCode == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "room_code required"})
		}

		room, err := rooms.JoinRoom(req.RoomCode, userID)
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrRoomNotJoinable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNoActiveDeck):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "you must have an active deck to join a room"})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join room"})
		}

		return c.JSON(fiber.Map{
			"message": "joined room",
			"room": fiber.Map{
				"room_code":  room.Code,
				"status":     room.Status,
				"player1_id": room.Player1ID,
				"player2_id": room.Player2ID,
			},
		})
	})

	secured.Get("/rooms/:code/state", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		snap, err := rooms.Snapshot(c.Params("code"), userID)
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNotAParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room state"})
		}

		return c.JSON(fiber.Map{"room": snap, "moves": snap.Moves})
	})

	secured.Post("/rooms/:code/play", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			CardID uint `json:"card_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.CardID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "card_id required"})
		}

		result, err := match.PlayCard(services.PlayCardCommand{
			RoomCode: c.Params("code"),
			UserID:   userID,
			CardID:   req.CardID,
		})
		if err != nil {
			return playError(c, err)
		}

		return c.JSON(fiber.Map{
			"message":     "move recorded",
			"room_status": result.RoomStatus,
			"round": fiber.Map{
				"round_number":   result.RoundNumber,
				"resolved":       result.Resolved,
				"winner_user_id": result.WinnerUserID,
			},
			"scores": fiber.Map{
				"player1_score": result.Player1Score,
				"player2_score": result.Player2Score,
				"winner_id":     result.RoomWinnerID,
			},
		})
	})
}

// playError maps every engine failure onto its response code; the messages
// go through verbatim.
func playError(c *fiber.Ctx, err error) error {
	var notActive *services.RoomNotActiveError
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotAParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &notActive),
		errors.Is(err, services.ErrCardNotInDeck),
		errors.Is(err, services.ErrNoActiveDeck),
		errors.Is(err, services.ErrAlreadyPlayed),
		errors.Is(err, services.ErrInvalidCard):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record move"})
	}
}
