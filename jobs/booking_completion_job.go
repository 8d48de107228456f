package jobs

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// expiryStore is the slice of storage the completion pass touches for one
// booking.
type expiryStore interface {
	MarkCompleted(bookingID uuid.UUID) (bool, error)
	ReleaseSlot(listingID uuid.UUID) error
}

// completeExpiredBooking finishes a single booking. The candidate list is
// read without a lock, so by the time we get here a lender may already have
// completed or cancelled the booking and released its slot. MarkCompleted
// reports whether this pass actually flipped the status; when it did not,
// the slot must stay untouched.
func completeExpiredBooking(store expiryStore, booking models.Booking) error {
	changed, err := store.MarkCompleted(booking.ID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return store.ReleaseSlot(booking.ListingID)
}

type gormExpiryStore struct {
	tx *gorm.DB
}

func (s gormExpiryStore) MarkCompleted(bookingID uuid.UUID) (bool, error) {
	res := s.tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingConfirmed).
		Update("status", models.BookingCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s gormExpiryStore) ReleaseSlot(listingID uuid.UUID) error {
	var listing models.Listing
	if err := s.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, "id = ?", listingID).Error; err != nil {
		// Listing may have been deleted; the booking still completes.
		return nil
	}
	if listing.Occupancy > 0 {
		return s.tx.Model(&models.Listing{}).Where("id = ?", listing.ID).
			Update("occupancy", listing.Occupancy-1).Error
	}
	return nil
}

// CompleteExpiredBookings moves confirmed bookings whose end time has passed
// to Completed and releases their slot on the listing.
func CompleteExpiredBookings() {
	log.Println("Running job: CompleteExpiredBookings...")

	var expired []models.Booking
	err := database.DB.
		Where("status = ? AND end_time < ?", models.BookingConfirmed, time.Now()).
		Find(&expired).Error
	if err != nil {
		log.Printf("Error checking for expired bookings: %v", err)
		return
	}

	for _, booking := range expired {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			return completeExpiredBooking(gormExpiryStore{tx: tx}, booking)
		})
		if err != nil {
			log.Printf("🔥 Failed to complete booking %s: %v", booking.ID, err)
			continue
		}
		log.Printf("✅ Completed expired booking %s", booking.ID)
	}
}
