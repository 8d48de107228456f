package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/wekesadev/park_spot/configs"
	"github.com/wekesadev/park_spot/models"
	"gorm.io/gorm"
)

// DocumentFolder is the fixed upload folder every listing document lands in.
const DocumentFolder = "park_spot_documents"

var documentURLPattern = regexp.MustCompile(DocumentFolder + `/([^/.?#]+)`)

// PublicIDFromURL derives the object-storage public id from a stored
// document URL. The second return is false when the URL does not contain
// the document folder; such rows are skipped during cleanup.
func PublicIDFromURL(fileURL string) (string, bool) {
	match := documentURLPattern.FindStringSubmatch(fileURL)
	if match == nil {
		return "", false
	}
	return DocumentFolder + "/" + match[1], true
}

// RemovalStore is the slice of persistence the cascading delete needs.
type RemovalStore interface {
	ListingDocuments(listingID uuid.UUID) ([]models.Document, error)
	DeleteDocuments(listingID uuid.UUID) error
	DeleteLocation(listingID uuid.UUID) error
	DeleteListing(listingID uuid.UUID) error
}

// BlobRemover deletes one object from blob storage by public id.
type BlobRemover interface {
	Remove(publicID string) error
}

// DeleteListingCascade removes a listing and everything hanging off it:
// document blobs first, then document rows, the location row, and finally
// the listing itself. Any failure aborts the remaining steps so the listing
// row is never orphaned from storage it still references.
func DeleteListingCascade(store RemovalStore, blobs BlobRemover, listingID uuid.UUID) error {
	documents, err := store.ListingDocuments(listingID)
	if err != nil {
		return fmt.Errorf("failed to load listing documents: %w", err)
	}

	for _, document := range documents {
		publicID, ok := PublicIDFromURL(document.FileURL)
		if !ok {
			continue
		}
		if err := blobs.Remove(publicID); err != nil {
			return fmt.Errorf("failed to delete document blob %s: %w", publicID, err)
		}
	}

	if err := store.DeleteDocuments(listingID); err != nil {
		return fmt.Errorf("failed to delete document rows: %w", err)
	}
	if err := store.DeleteLocation(listingID); err != nil {
		return fmt.Errorf("failed to delete location row: %w", err)
	}
	if err := store.DeleteListing(listingID); err != nil {
		return fmt.Errorf("failed to delete listing row: %w", err)
	}
	return nil
}

// GormRemovalStore backs the cascade with the live database.
type GormRemovalStore struct {
	DB *gorm.DB
}

func (s *GormRemovalStore) ListingDocuments(listingID uuid.UUID) ([]models.Document, error) {
	var documents []models.Document
	err := s.DB.Where("listing_id = ?", listingID).Find(&documents).Error
	return documents, err
}

func (s *GormRemovalStore) DeleteDocuments(listingID uuid.UUID) error {
	return s.DB.Where("listing_id = ?", listingID).Delete(&models.Document{}).Error
}

func (s *GormRemovalStore) DeleteLocation(listingID uuid.UUID) error {
	return s.DB.Where("listing_id = ?", listingID).Delete(&models.Location{}).Error
}

func (s *GormRemovalStore) DeleteListing(listingID uuid.UUID) error {
	return s.DB.Delete(&models.Listing{}, "id = ?", listingID).Error
}

// CloudinaryBlobRemover deletes document blobs from Cloudinary.
type CloudinaryBlobRemover struct{}

func (CloudinaryBlobRemover) Remove(publicID string) error {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
