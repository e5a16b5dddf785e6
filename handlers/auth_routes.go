// handlers/auth_routes.go
package handlers

import (
	"errors"
	"log"
	"strings"

	"card-jitsu-system/middleware"
	"card-jitsu-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, users *services.UserService, jwtSecret []byte) {
	app.Post("/api/register", func(c *fiber.Ctx) error {
		type Req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		username := strings.TrimSpace(req.Username)
		password := strings.TrimSpace(req.Password)
		if username == "" || password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password required"})
		}

		user, token, err := users.Register(username, password)
		if errors.Is(err, services.ErrUsernameTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			log.Printf("register failed for %q: %v", username, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration failed"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "registered",
			"token":   token,
			"user":    fiber.Map{"id": user.ID, "username": user.Username},
		})
	})

	app.Post("/api/login", func(c *fiber.Ctx) error {
		type Req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		username := strings.TrimSpace(req.Username)
		password := strings.TrimSpace(req.Password)
		if username == "" || password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password required"})
		}

		user, token, err := users.Login(username, password)
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "login failed"})
		}

		return c.JSON(fiber.Map{
			"message": "logged in",
			"token":   token,
			"user":    fiber.Map{"id": user.ID, "username": user.Username},
		})
	})

	secured := app.Group("/api", middleware.RequireAuth(jwtSecret))

	secured.Get("/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		user, err := users.Profile(userID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}

		return c.JSON(fiber.Map{
			"username":    user.Username,
			"win_count":   user.WinCount,
			"total_games": user.TotalGames,
		})
	})
}
