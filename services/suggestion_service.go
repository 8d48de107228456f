package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/utils"
	"gorm.io/gorm"
)

// MaxPhotoSize is the per-photo upload ceiling for suggestions.
const MaxPhotoSize = 5 << 20

// SuggestionInput carries the raw suggestion form. Capacity and the
// coordinates arrive as strings because the multipart form does not type
// them; validation owns the parsing.
type SuggestionInput struct {
	OwnerID      uuid.UUID
	Title        string
	CapacityRaw  string
	VehicleTypes []string
	PhotoSizes   []int64
	LatitudeRaw  string
	LongitudeRaw string
}

// ValidateSuggestion checks the form before any write is issued. It returns
// a field → message map; an empty map means the form passed.
func ValidateSuggestion(in SuggestionInput) map[string]string {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(in.Title) == "" {
		fieldErrors["title"] = "Title is required"
	}

	capacity, err := strconv.Atoi(strings.TrimSpace(in.CapacityRaw))
	if err != nil || capacity <= 0 {
		fieldErrors["capacity"] = "Capacity must be a positive whole number"
	}

	if len(in.VehicleTypes) == 0 {
		fieldErrors["vehicle_types"] = "Select at least one vehicle type"
	}

	if len(in.PhotoSizes) == 0 {
		fieldErrors["photos"] = "At least one photo is required"
	} else {
		for _, size := range in.PhotoSizes {
			if size > MaxPhotoSize {
				fieldErrors["photos"] = "Each photo must be under 5 MB"
				break
			}
		}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(in.LatitudeRaw), 64)
	if err != nil || lat < -90 || lat > 90 {
		fieldErrors["latitude"] = "A valid latitude is required"
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(in.LongitudeRaw), 64)
	if err != nil || lng < -180 || lng > 180 {
		fieldErrors["longitude"] = "A valid longitude is required"
	}

	return fieldErrors
}

// SuggestionStore is the slice of persistence the suggestion flow needs.
type SuggestionStore interface {
	CreateListing(listing *models.Listing) error
	CreateLocation(location *models.Location) error
	DeleteListing(id uuid.UUID) error
}

// SuggestListing inserts the listing, then its location. The two writes are
// deliberately not a transaction: the backing store commits each row as it
// lands, and a failed location insert is compensated by deleting the listing
// row that already exists.
func SuggestListing(store SuggestionStore, in SuggestionInput, photoURLs []string) (*models.Listing, error) {
	if fieldErrors := ValidateSuggestion(in); len(fieldErrors) != 0 {
		return nil, fmt.Errorf("suggestion failed validation")
	}

	capacity, _ := strconv.Atoi(strings.TrimSpace(in.CapacityRaw))
	lat, _ := strconv.ParseFloat(strings.TrimSpace(in.LatitudeRaw), 64)
	lng, _ := strconv.ParseFloat(strings.TrimSpace(in.LongitudeRaw), 64)

	vehicleTypes, _ := json.Marshal(in.VehicleTypes)
	photos, _ := json.Marshal(photoURLs)

	listing := models.Listing{
		OwnerID:      in.OwnerID,
		Title:        strings.TrimSpace(in.Title),
		Category:     models.CategoryNonAccountable,
		Capacity:     capacity,
		VehicleTypes: vehicleTypes,
		Photos:       photos,
		Verified:     false,
		ReviewScore:  0,
		Status:       models.StatusPending,
		AddedBy:      models.AddedByUserSuggestion,
	}

	if err := store.CreateListing(&listing); err != nil {
		return nil, fmt.Errorf("failed to save suggestion: %w", err)
	}

	location := models.Location{
		ListingID: listing.ID,
		Latitude:  lat,
		Longitude: lng,
	}
	if err := store.CreateLocation(&location); err != nil {
		// Compensating delete: the listing row is already committed, so
		// remove it rather than leave a listing with no coordinates.
		if delErr := store.DeleteListing(listing.ID); delErr != nil {
			return nil, fmt.Errorf("failed to save location: %v (rollback also failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	listing.Location = location
	return &listing, nil
}

// GormSuggestionStore backs the suggestion flow with the live database.
type GormSuggestionStore struct {
	DB *gorm.DB
}

func (s *GormSuggestionStore) CreateListing(listing *models.Listing) error {
	code, err := utils.GenerateUniqueReferenceCode(s.DB)
	if err != nil {
		return err
	}
	listing.ReferenceCode = code
	return s.DB.Create(listing).Error
}

func (s *GormSuggestionStore) CreateLocation(location *models.Location) error {
	return s.DB.Create(location).Error
}

func (s *GormSuggestionStore) DeleteListing(id uuid.UUID) error {
	return s.DB.Delete(&models.Listing{}, "id = ?", id).Error
}
