package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/wekesadev/park_spot/handlers"
)

func FeedRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Use("/feed", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/feed", websocket.New(handlers.ServeListingFeed))
}
