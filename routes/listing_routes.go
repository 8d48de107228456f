package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wekesadev/park_spot/handlers"
	"github.com/wekesadev/park_spot/middleware"
)

func ListingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	listings := api.Group("/listings", middleware.Protected())
	listings.Get("", handlers.ListListings)
	listings.Get("/me", handlers.GetMyListings)
	listings.Get("/:listingId", handlers.GetListing)

	listings.Post("/suggestions", handlers.CreateSuggestion)

	listings.Post("/:listingId/documents", middleware.LenderRequired(), handlers.UploadListingDocument)
	listings.Get("/:listingId/documents", handlers.GetListingDocuments)
}
