package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wekesadev/park_spot/handlers"
	"github.com/wekesadev/park_spot/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Put("", handlers.UpdateProfile)
	profile.Post("/picture", handlers.UploadProfilePicture)
	profile.Get("/picture", handlers.GetProfilePicture)
}
