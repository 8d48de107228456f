package jobs

import (
	"fmt"
	"log"
	"time"

	config "github.com/wekesadev/park_spot/configs"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/notifications"
)

const stalePendingDays = 7

// RemindStalePendingListings emails the admin a digest of suggestions that
// have sat in the review queue for more than a week.
func RemindStalePendingListings() {
	log.Println("Running job: RemindStalePendingListings...")

	cutoff := time.Now().AddDate(0, 0, -stalePendingDays)

	var stale []models.Listing
	err := database.DB.
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Order("created_at asc").
		Find(&stale).Error
	if err != nil {
		log.Printf("Error checking for stale pending listings: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	body := fmt.Sprintf("<h1>Review Queue Reminder</h1><p>%d listing(s) have been pending for over %d days:</p><ul>", len(stale), stalePendingDays)
	for _, listing := range stale {
		body += fmt.Sprintf("<li>%s (%s) — submitted %s</li>", listing.Title, listing.ReferenceCode, listing.CreatedAt.Format("2006-01-02"))
	}
	body += "</ul>"

	go notifications.SendEmail(
		config.Config("ADMIN_FULL_NAME"),
		config.Config("ADMIN_EMAIL"),
		"Pending Listings Awaiting Review",
		body,
	)
}
