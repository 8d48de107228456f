package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wekesadev/park_spot/handlers"
	"github.com/wekesadev/park_spot/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	listings := admin.Group("/listings")
	listings.Get("", handlers.AdminListListings)
	listings.Get("/suggestions/pending", handlers.ListPendingSuggestions)
	listings.Post("/:listingId/approve", handlers.ApproveListing)
	listings.Post("/:listingId/reject", handlers.RejectListing)
	listings.Post("/:listingId/revert", handlers.RevertListing)
	listings.Put("/:listingId/verification", handlers.ToggleVerification)
	listings.Delete("/:listingId", handlers.AdminDeleteListing)

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)

	reports := admin.Group("/reports")
	reports.Get("/bookings", handlers.GenerateBookingReport)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)
}
