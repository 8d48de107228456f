package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/wekesadev/park_spot/configs"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/services"
	"github.com/wekesadev/park_spot/websocket"
)

const photoFolder = "park_spot_photos"

// CreateSuggestion is the user-suggestion flow: validate the whole form
// before any network write, upload the photos, insert the listing, then its
// location. A failed location insert rolls the listing back.
func CreateSuggestion(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	ownerID, _ := uuid.Parse(claims["user_id"].(string))

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse form"})
	}

	photos := form.File["photos"]
	photoSizes := make([]int64, 0, len(photos))
	for _, photo := range photos {
		photoSizes = append(photoSizes, photo.Size)
	}

	input := services.SuggestionInput{
		OwnerID:      ownerID,
		Title:        c.FormValue("title"),
		CapacityRaw:  c.FormValue("capacity"),
		VehicleTypes: form.Value["vehicle_types"],
		PhotoSizes:   photoSizes,
		LatitudeRaw:  c.FormValue("latitude"),
		LongitudeRaw: c.FormValue("longitude"),
	}

	if fieldErrors := services.ValidateSuggestion(input); len(fieldErrors) != 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrors})
	}

	photoURLs, err := uploadSuggestionPhotos(photos)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload photos"})
	}

	store := &services.GormSuggestionStore{DB: database.DB}
	listing, err := services.SuggestListing(store, input, photoURLs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	websocket.PublishListingChange(websocket.EventInsert, listing.ID, listing.Category, listing.Status)

	location := listing.Location
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"listing": services.BuildListingView(*listing, &location),
		"message": "Suggestion submitted for review.",
	})
}

func uploadSuggestionPhotos(photos []*multipart.FileHeader) ([]string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		uploadResult, err := cld.Upload.Upload(ctx, photo, uploader.UploadParams{
			Folder:   photoFolder,
			PublicID: fmt.Sprintf("photo_%s", uuid.New().String()),
		})
		cancel()
		if err != nil {
			return nil, err
		}
		urls = append(urls, uploadResult.SecureURL)
	}
	return urls, nil
}
