package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/models"
)

// ListingView is the shape every screen renders: raw rows merged with their
// location and with optional fields defaulted, so clients never branch on
// missing data.
type ListingView struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	ReferenceCode   string    `json:"reference_code"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	HourlyPrice     float64   `json:"hourly_price"`
	Capacity        int       `json:"capacity"`
	Occupancy       int       `json:"occupancy"`
	VehicleTypes    []string  `json:"vehicle_types"`
	Photos          []string  `json:"photos"`
	Verified        bool      `json:"verified"`
	ReviewScore     float64   `json:"review_score"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	AddedBy         string    `json:"added_by"`
	CertificateURL  string    `json:"certificate_url,omitempty"`
	HasLocation     bool      `json:"has_location"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	CreatedAt       time.Time `json:"created_at"`
}

// NormalizeStatus maps any stored status outside the three-state lifecycle
// back to Pending.
func NormalizeStatus(status string) string {
	switch status {
	case models.StatusApproved, models.StatusRejected, models.StatusPending:
		return status
	default:
		return models.StatusPending
	}
}

// decodeTags tolerates NULL columns and malformed json, both of which read
// back as an empty set.
func decodeTags(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// BuildListingView merges a listing with its location row.
func BuildListingView(listing models.Listing, location *models.Location) ListingView {
	view := ListingView{
		ID:            listing.ID,
		OwnerID:       listing.OwnerID,
		ReferenceCode: listing.ReferenceCode,
		Title:         listing.Title,
		Category:      listing.Category,
		HourlyPrice:   listing.HourlyPrice,
		Capacity:      listing.Capacity,
		Occupancy:     listing.Occupancy,
		VehicleTypes:  decodeTags(listing.VehicleTypes),
		Photos:        decodeTags(listing.Photos),
		Verified:      listing.Verified,
		ReviewScore:   listing.ReviewScore,
		Status:        NormalizeStatus(listing.Status),
		AddedBy:       listing.AddedBy,
		CreatedAt:     listing.CreatedAt,
	}
	if listing.RejectionReason != nil {
		view.RejectionReason = *listing.RejectionReason
	}
	if listing.CertificateURL != nil {
		view.CertificateURL = *listing.CertificateURL
	}
	if location != nil {
		view.HasLocation = true
		view.Latitude = location.Latitude
		view.Longitude = location.Longitude
	}
	return view
}

// BuildListingViews merges a batch of listings with their location rows
// client-side, the way the screens join the two tables.
func BuildListingViews(listings []models.Listing, locations []models.Location) []ListingView {
	byListing := make(map[uuid.UUID]*models.Location, len(locations))
	for i := range locations {
		byListing[locations[i].ListingID] = &locations[i]
	}

	views := make([]ListingView, 0, len(listings))
	for _, listing := range listings {
		views = append(views, BuildListingView(listing, byListing[listing.ID]))
	}
	return views
}

// CanViewDocuments limits a listing's verification documents (leases, title
// deeds, utility bills) to the listing's owner and admins.
func CanViewDocuments(ownerID, callerID uuid.UUID, role string) bool {
	return ownerID == callerID || role == "admin"
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrReasonRequired = errors.New("a rejection reason is required")

var allowedTransitions = map[string][]string{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved: {models.StatusPending},
	models.StatusRejected: {models.StatusPending},
}

// CanTransition reports whether the listing lifecycle permits from → to.
// The stored status is normalized first, so legacy rows with unknown
// statuses behave as Pending.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[NormalizeStatus(from)] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyStatusChange mutates the listing in memory according to the
// lifecycle rules. A rejection needs a non-empty reason; the stored reason
// is dropped as soon as the listing leaves the Rejected state.
func ApplyStatusChange(listing *models.Listing, to string, reason string) error {
	from := NormalizeStatus(listing.Status)
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}

	if to == models.StatusRejected {
		if reason == "" {
			return ErrReasonRequired
		}
		listing.RejectionReason = &reason
	} else if from == models.StatusRejected {
		listing.RejectionReason = nil
	}

	listing.Status = to
	return nil
}
