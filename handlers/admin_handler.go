package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/notifications"
	"github.com/wekesadev/park_spot/services"
	"github.com/wekesadev/park_spot/websocket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminListListings is the review screen's fetch: any status, any category,
// optional title search, newest first.
func AdminListListings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Listing{})
	countQuery := database.DB.Model(&models.Listing{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
		countQuery = countQuery.Where("category = ?", category)
	}
	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("title ILIKE ? OR reference_code ILIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("title ILIKE ? OR reference_code ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	countQuery.Count(&total)

	var listings []models.Listing
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
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

func ListPendingSuggestions(c *fiber.Ctx) error {
	var listings []models.Listing
	if err := database.DB.
		Where("status = ? AND added_by = ?", models.StatusPending, models.AddedByUserSuggestion).
		Order("created_at asc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	views, err := listingViews(listings)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listing locations"})
	}
	return c.JSON(views)
}

// changeListingStatus applies one lifecycle transition under a row lock so a
// double-tapped button cannot run the transition twice.
func changeListingStatus(listingID, targetStatus, reason string) (*models.Listing, error) {
	var listing models.Listing
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&listing, "id = ?", listingID).Error; err != nil {
			return errors.New("listing not found")
		}

		if err := services.ApplyStatusChange(&listing, targetStatus, reason); err != nil {
			return err
		}

		return tx.Model(&models.Listing{}).Where("id = ?", listing.ID).Updates(map[string]interface{}{
			"status":           listing.Status,
			"rejection_reason": listing.RejectionReason,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	websocket.PublishListingChange(websocket.EventUpdate, listing.ID, listing.Category, listing.Status)
	return &listing, nil
}

func ApproveListing(c *fiber.Ctx) error {
	listing, err := changeListingStatus(c.Params("listingId"), models.StatusApproved, "")
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var owner models.User
	if err := database.DB.First(&owner, "id = ?", listing.OwnerID).Error; err == nil {
		go services.GenerateApprovalCertificate(*listing, owner)
	}

	return c.JSON(fiber.Map{"message": "Listing approved successfully"})
}

func RejectListing(c *fiber.Ctx) error {
	type RejectRequest struct {
		Reason string `json:"reason" validate:"required,min=3"`
	}
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	listing, err := changeListingStatus(c.Params("listingId"), models.StatusRejected, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) || errors.Is(err, services.ErrReasonRequired) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var owner models.User
	if err := database.DB.First(&owner, "id = ?", listing.OwnerID).Error; err == nil {
		go notifications.SendEmail(
			owner.FullName,
			owner.Email,
			"Update on Your Parking Spot",
			fmt.Sprintf("<h1>Spot Update</h1><p>Your spot <b>%s</b> was not approved.</p><p><b>Reason:</b> %s</p>", listing.Title, req.Reason),
		)
	}

	return c.JSON(fiber.Map{"message": "Listing rejected"})
}

// RevertListing returns an approved or rejected listing to the review queue.
func RevertListing(c *fiber.Ctx) error {
	_, err := changeListingStatus(c.Params("listingId"), models.StatusPending, "")
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Listing moved back to pending"})
}

func ToggleVerification(c *fiber.Ctx) error {
	type Request struct {
		Verified bool `json:"verified"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	listingID := c.Params("listingId")

	var listing models.Listing
	if err := database.DB.First(&listing, "id = ?", listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	if err := database.DB.Model(&models.Listing{}).Where("id = ?", listingID).
		Update("verified", req.Verified).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update verification"})
	}

	websocket.PublishListingChange(websocket.EventUpdate, listing.ID, listing.Category, listing.Status)
	return c.JSON(fiber.Map{"message": "Verification updated successfully."})
}

// AdminDeleteListing runs the full cascade: document blobs, document rows,
// location, then the listing. Bookings are kept as historical records.
func AdminDeleteListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	var listing models.Listing
	if err := database.DB.First(&listing, "id = ?", listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	store := &services.GormRemovalStore{DB: database.DB}
	if err := services.DeleteListingCascade(store, services.CloudinaryBlobRemover{}, listingID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	websocket.PublishListingChange(websocket.EventDelete, listing.ID, listing.Category, listing.Status)
	return c.SendStatus(fiber.StatusNoContent)
}

type DashboardAnalyticsResponse struct {
	TotalListings      int64            `json:"total_listings"`
	PendingListings    int64            `json:"pending_listings"`
	ApprovedListings   int64            `json:"approved_listings"`
	TotalRevenue       float64          `json:"total_revenue"`
	BookingsLast30Days int64            `json:"bookings_last_30_days"`
	RecentBookings     []models.Booking `json:"recent_bookings"`
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var response DashboardAnalyticsResponse
	var totalRevenue float64

	database.DB.Model(&models.Listing{}).Count(&response.TotalListings)
	database.DB.Model(&models.Listing{}).Where("status = ?", models.StatusPending).Count(&response.PendingListings)
	database.DB.Model(&models.Listing{}).Where("status = ?", models.StatusApproved).Count(&response.ApprovedListings)

	database.DB.Model(&models.Booking{}).Where("status = ?", models.BookingCompleted).
		Select("COALESCE(SUM(price), 0)").Row().Scan(&totalRevenue)
	response.TotalRevenue = totalRevenue

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&models.Booking{}).Where("created_at > ?", thirtyDaysAgo).Count(&response.BookingsLast30Days)

	database.DB.Order("created_at desc").Limit(5).Preload("Listing").Find(&response.RecentBookings)

	return c.JSON(response)
}

func GenerateBookingReport(c *fiber.Ctx) error {
	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var bookings []models.Booking
	database.DB.
		Preload("Listing").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at desc").
		Find(&bookings)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Booking ID", "Date", "Spot", "Renter", "Vehicle", "Start", "End", "Price", "Status"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, booking := range bookings {
		row := []string{
			booking.ID.String(),
			booking.CreatedAt.Format("2006-01-02 15:04"),
			booking.Listing.Title,
			booking.RenterName,
			fmt.Sprintf("%s (%s)", booking.VehiclePlate, booking.VehicleType),
			booking.StartTime.Format("2006-01-02 15:04"),
			booking.EndTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", booking.Price),
			booking.Status,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"bookings_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	var users []models.User
	var totalUsers int64

	query := database.DB.Model(&models.User{})
	countQuery := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}

	countQuery.Count(&totalUsers)
	query.Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}
