package handlers

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/services"
)

// listingViews loads the location rows for a listing batch and merges them
// into view models, defaulting whatever the rows left empty.
func listingViews(listings []models.Listing) ([]services.ListingView, error) {
	if len(listings) == 0 {
		return []services.ListingView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(listings))
	for _, listing := range listings {
		ids = append(ids, listing.ID)
	}

	var locations []models.Location
	if err := database.DB.Where("listing_id IN ?", ids).Find(&locations).Error; err != nil {
		return nil, err
	}

	return services.BuildListingViews(listings, locations), nil
}

// ListListings is the renter-facing feed: approved listings only, optionally
// narrowed by category or vehicle type, newest first.
func ListListings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Listing{}).Where("status = ?", models.StatusApproved)
	countQuery := database.DB.Model(&models.Listing{}).Where("status = ?", models.StatusApproved)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
		countQuery = countQuery.Where("category = ?", category)
	}
	if vehicleType := c.Query("vehicle_type"); vehicleType != "" {
		query = query.Where("vehicle_types @> ?", strconv.Quote(vehicleType))
		countQuery = countQuery.Where("vehicle_types @> ?", strconv.Quote(vehicleType))
	}

	var total int64
	countQuery.Count(&total)

	var listings []models.Listing
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listings"})
	}

	views, err := listingViews(listings)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listing locations"})
	}

	return c.JSON(fiber.Map{
		"data": views,
		"meta": fiber.Map{
			"total":        total,
			"current_page": page,
			"last_page":    int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func GetListing(c *fiber.Ctx) error {
	listingID := c.Params("listingId")

	var listing models.Listing
	if err := database.DB.Where("id = ?", listingID).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	var location models.Location
	locationPtr := &location
	if err := database.DB.Where("listing_id = ?", listing.ID).First(&location).Error; err != nil {
		locationPtr = nil
	}

	// Verification documents carry the same access rule as the documents
	// endpoint: owner and admins only. Everyone else gets an empty list.
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	callerID, _ := uuid.Parse(claims["user_id"].(string))
	role, _ := claims["role"].(string)

	documents := []models.Document{}
	if services.CanViewDocuments(listing.OwnerID, callerID, role) {
		database.DB.Where("listing_id = ?", listing.ID).Order("uploaded_at desc").Find(&documents)
	}

	return c.JSON(fiber.Map{
		"listing":   services.BuildListingView(listing, locationPtr),
		"documents": documents,
	})
}

// GetMyListings returns the caller's own spots, every status included, so
// the lender screen can show pending and rejected entries with reasons.
func GetMyListings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	ownerID, _ := uuid.Parse(claims["user_id"].(string))

	query := database.DB.Where("owner_id = ?", ownerID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var listings []models.Listing
	if err := query.Order("created_at desc").Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listings"})
	}

	views, err := listingViews(listings)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listing locations"})
	}

	return c.JSON(views)
}
