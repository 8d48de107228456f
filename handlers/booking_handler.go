package handlers

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/notifications"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateBookingRequest struct {
	ListingID    string `json:"listing_id" validate:"required,uuid"`
	VehiclePlate string `json:"vehicle_plate" validate:"required,min=2"`
	VehicleType  string `json:"vehicle_type" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
}

func CreateBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	renterID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_time must be RFC3339"})
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be RFC3339"})
	}
	if !endTime.After(startTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	var renter models.User
	if err := database.DB.First(&renter, "id = ?", renterID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	renterPhone := ""
	if renter.PhoneNumber != nil {
		renterPhone = *renter.PhoneNumber
	}

	var booking models.Booking
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&listing, "id = ?", req.ListingID).Error; err != nil {
			return errors.New("listing not found")
		}

		if listing.Status != models.StatusApproved {
			return errors.New("this spot is not open for bookings")
		}
		if listing.Capacity > 0 && listing.Occupancy >= listing.Capacity {
			return errors.New("this spot is fully occupied")
		}

		hours := endTime.Sub(startTime).Hours()
		price := math.Round(listing.HourlyPrice*hours*100) / 100

		booking = models.Booking{
			ListingID:    listing.ID,
			RenterID:     renterID,
			RenterName:   renter.FullName,
			RenterEmail:  renter.Email,
			RenterPhone:  renterPhone,
			VehiclePlate: req.VehiclePlate,
			VehicleType:  req.VehicleType,
			StartTime:    startTime,
			EndTime:      endTime,
			Price:        price,
			Status:       models.BookingConfirmed,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		listing.Occupancy++
		return tx.Model(&models.Listing{}).Where("id = ?", listing.ID).
			Update("occupancy", listing.Occupancy).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	go notifications.SendEmail(
		renter.FullName,
		renter.Email,
		"Booking Confirmed",
		"<h1>Booking Confirmed</h1><p>Your parking spot is reserved. See you there!</p>",
	)

	return c.Status(fiber.StatusCreated).JSON(booking)
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	renterID, _ := uuid.Parse(claims["user_id"].(string))

	query := database.DB.Where("renter_id = ?", renterID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Order("created_at desc").Preload("Listing").Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	return c.JSON(bookings)
}

// GetLenderBookings returns bookings across all of the caller's listings,
// optionally narrowed to one listing or one status.
func GetLenderBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	ownerID, _ := uuid.Parse(claims["user_id"].(string))

	query := database.DB.
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.owner_id = ?", ownerID)

	if listingID := c.Query("listing_id"); listingID != "" {
		query = query.Where("bookings.listing_id = ?", listingID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("bookings.status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Order("bookings.created_at desc").Preload("Listing").Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	return c.JSON(bookings)
}

// finishBooking moves a Confirmed booking to its terminal status and
// releases its slot on the listing, all under one row lock.
func finishBooking(bookingID string, callerID uuid.UUID, targetStatus string, lenderOnly bool) (*models.Booking, error) {
	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}

		var listing models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&listing, "id = ?", booking.ListingID).Error; err != nil {
			return errors.New("listing not found")
		}

		if lenderOnly {
			if listing.OwnerID != callerID {
				return errors.New("only the spot owner can do this")
			}
		} else if booking.RenterID != callerID && listing.OwnerID != callerID {
			return errors.New("you are not part of this booking")
		}

		if booking.Status != models.BookingConfirmed {
			return errors.New("only confirmed bookings can be updated")
		}

		booking.Status = targetStatus
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("status", targetStatus).Error; err != nil {
			return err
		}

		if listing.Occupancy > 0 {
			if err := tx.Model(&models.Listing{}).Where("id = ?", listing.ID).
				Update("occupancy", listing.Occupancy-1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func CompleteBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	callerID, _ := uuid.Parse(claims["user_id"].(string))

	booking, err := finishBooking(c.Params("bookingId"), callerID, models.BookingCompleted, true)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(booking)
}

func CancelBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	callerID, _ := uuid.Parse(claims["user_id"].(string))

	booking, err := finishBooking(c.Params("bookingId"), callerID, models.BookingCancelled, false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	go notifications.SendEmail(
		booking.RenterName,
		booking.RenterEmail,
		"Booking Cancelled",
		"<h1>Booking Cancelled</h1><p>Your booking has been cancelled. The slot has been released.</p>",
	)

	return c.JSON(booking)
}
