package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/wekesadev/park_spot/configs"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/services"
)

// UploadListingDocument stores a verification document (lease, title deed,
// utility bill) against the caller's listing.
func UploadListingDocument(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	ownerID, _ := uuid.Parse(claims["user_id"].(string))
	listingID := c.Params("listingId")

	var listing models.Listing
	if err := database.DB.First(&listing, "id = ? AND owner_id = ?", listingID, ownerID).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Listing not found or you are not its owner."})
	}

	documentType := c.FormValue("document_type")
	if documentType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "document_type is required."})
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Document file is required."})
	}

	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize storage."})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   services.DocumentFolder,
		PublicID: fmt.Sprintf("doc_%s_%s", listingID, uuid.New().String()),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload document."})
	}

	document := models.Document{
		ListingID:    listing.ID,
		FileName:     file.Filename,
		FileURL:      uploadResult.SecureURL,
		DocumentType: documentType,
		UploadedAt:   time.Now(),
	}
	if err := database.DB.Create(&document).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save document record."})
	}

	return c.Status(fiber.StatusCreated).JSON(document)
}

func GetListingDocuments(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	callerID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)
	listingID := c.Params("listingId")

	var listing models.Listing
	if err := database.DB.First(&listing, "id = ?", listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	if !services.CanViewDocuments(listing.OwnerID, callerID, role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this listing's documents."})
	}

	var documents []models.Document
	database.DB.Where("listing_id = ?", listingID).Order("uploaded_at desc").Find(&documents)

	return c.JSON(documents)
}
