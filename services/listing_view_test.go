package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/models"
)

func TestBuildListingViewDefaults(t *testing.T) {
	// A row with every optional column missing.
	listing := models.Listing{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Bare lot",
	}

	view := BuildListingView(listing, nil)

	if view.HourlyPrice != 0 || view.Capacity != 0 || view.Occupancy != 0 || view.ReviewScore != 0 {
		t.Fatalf("numeric fields must default to 0, got %+v", view)
	}
	if view.VehicleTypes == nil || len(view.VehicleTypes) != 0 {
		t.Fatalf("missing vehicle types must become an empty slice, got %#v", view.VehicleTypes)
	}
	if view.Photos == nil || len(view.Photos) != 0 {
		t.Fatalf("missing photos must become an empty slice, got %#v", view.Photos)
	}
	if view.Status != models.StatusPending {
		t.Fatalf("missing status must default to Pending, got %q", view.Status)
	}
	if view.HasLocation {
		t.Fatalf("view without a location row must not claim one")
	}
}

func TestBuildListingViewMalformedTags(t *testing.T) {
	listing := models.Listing{
		ID:           uuid.New(),
		VehicleTypes: []byte(`{"not":"an array"}`),
		Photos:       []byte(`garbage`),
	}

	view := BuildListingView(listing, nil)
	if len(view.VehicleTypes) != 0 || len(view.Photos) != 0 {
		t.Fatalf("malformed json columns must read back empty, got %+v", view)
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"Approved":  models.StatusApproved,
		"Rejected":  models.StatusRejected,
		"Pending":   models.StatusPending,
		"":          models.StatusPending,
		"approved":  models.StatusPending,
		"Suspended": models.StatusPending,
	}
	for stored, want := range cases {
		if got := NormalizeStatus(stored); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", stored, got, want)
		}
	}
}

func TestBuildListingViewMergesLocation(t *testing.T) {
	listingID := uuid.New()
	listing := models.Listing{ID: listingID, Status: models.StatusApproved, CreatedAt: time.Now()}
	location := models.Location{ListingID: listingID, Latitude: -1.2921, Longitude: 36.8219}

	view := BuildListingView(listing, &location)
	if !view.HasLocation || view.Latitude != -1.2921 || view.Longitude != 36.8219 {
		t.Fatalf("location was not merged: %+v", view)
	}
}

func TestBuildListingViewsJoinsByID(t *testing.T) {
	first := models.Listing{ID: uuid.New()}
	second := models.Listing{ID: uuid.New()}
	locations := []models.Location{
		{ListingID: second.ID, Latitude: 1, Longitude: 2},
	}

	views := BuildListingViews([]models.Listing{first, second}, locations)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].HasLocation {
		t.Fatalf("first listing has no location row but view claims one")
	}
	if !views[1].HasLocation || views[1].Latitude != 1 {
		t.Fatalf("second listing's location was not merged: %+v", views[1])
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{models.StatusPending, models.StatusApproved},
		{models.StatusPending, models.StatusRejected},
		{models.StatusApproved, models.StatusPending},
		{models.StatusRejected, models.StatusPending},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("transition %s -> %s should be allowed", pair[0], pair[1])
		}
	}

	forbidden := [][2]string{
		{models.StatusApproved, models.StatusRejected},
		{models.StatusRejected, models.StatusApproved},
		{models.StatusApproved, models.StatusApproved},
		{models.StatusPending, models.StatusPending},
	}
	for _, pair := range forbidden {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("transition %s -> %s should be rejected", pair[0], pair[1])
		}
	}

	// Unknown stored statuses behave as Pending.
	if !CanTransition("garbage", models.StatusApproved) {
		t.Fatalf("unknown status should normalize to Pending and allow approval")
	}
}

func TestApplyStatusChangeRequiresReason(t *testing.T) {
	listing := models.Listing{Status: models.StatusPending}
	if err := ApplyStatusChange(&listing, models.StatusRejected, ""); err != ErrReasonRequired {
		t.Fatalf("rejection without a reason must fail, got %v", err)
	}
	if listing.Status != models.StatusPending {
		t.Fatalf("failed transition must not mutate the listing")
	}

	if err := ApplyStatusChange(&listing, models.StatusRejected, "blurry photos"); err != nil {
		t.Fatalf("rejection with a reason failed: %v", err)
	}
	if listing.Status != models.StatusRejected || listing.RejectionReason == nil || *listing.RejectionReason != "blurry photos" {
		t.Fatalf("rejection did not stick: %+v", listing)
	}
}

func TestApplyStatusChangeClearsReasonOnRevert(t *testing.T) {
	reason := "no access road"
	listing := models.Listing{Status: models.StatusRejected, RejectionReason: &reason}

	if err := ApplyStatusChange(&listing, models.StatusPending, ""); err != nil {
		t.Fatalf("revert failed: %v", err)
	}
	if listing.RejectionReason != nil {
		t.Fatalf("reason must be cleared when leaving Rejected, got %q", *listing.RejectionReason)
	}
	if listing.Status != models.StatusPending {
		t.Fatalf("status = %q, want Pending", listing.Status)
	}
}

func TestApplyStatusChangeRejectsInvalid(t *testing.T) {
	listing := models.Listing{Status: models.StatusApproved}
	if err := ApplyStatusChange(&listing, models.StatusRejected, "reason"); err != ErrInvalidTransition {
		t.Fatalf("Approved -> Rejected must fail, got %v", err)
	}
}

func TestCanViewDocuments(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	cases := []struct {
		name   string
		caller uuid.UUID
		role   string
		want   bool
	}{
		{"owner", owner, "lender", true},
		{"admin", stranger, "admin", true},
		{"other renter", stranger, "user", false},
		{"other lender", stranger, "lender", false},
	}
	for _, tc := range cases {
		if got := CanViewDocuments(owner, tc.caller, tc.role); got != tc.want {
			t.Errorf("%s: CanViewDocuments = %v, want %v", tc.name, got, tc.want)
		}
	}
}
