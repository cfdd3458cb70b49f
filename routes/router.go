package routes

import (
	"anneta.link/configs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes wires the global middleware and all route groups.
func SetupRoutes(app *fiber.App, cfg *configs.AppConfig) {
	app.Use(recoverMiddleware.New())
	app.Use(logger.New())

	registerAPIRoutes(app, cfg)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
}
