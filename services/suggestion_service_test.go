package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/models"
)

func validInput() SuggestionInput {
	return SuggestionInput{
		OwnerID:      uuid.New(),
		Title:        "Lot A",
		CapacityRaw:  "4",
		VehicleTypes: []string{"Car"},
		PhotoSizes:   []int64{1024},
		LatitudeRaw:  "-1.2921",
		LongitudeRaw: "36.8219",
	}
}

func TestValidateSuggestionPasses(t *testing.T) {
	if errs := ValidateSuggestion(validInput()); len(errs) != 0 {
		t.Fatalf("valid input rejected: %v", errs)
	}
}

func TestValidateSuggestionCapacity(t *testing.T) {
	for _, raw := range []string{"3.5", "-2", "", "0", "four"} {
		in := validInput()
		in.CapacityRaw = raw
		errs := ValidateSuggestion(in)
		if _, ok := errs["capacity"]; !ok {
			t.Fatalf("capacity %q must block submission, got %v", raw, errs)
		}
	}
}

func TestValidateSuggestionVehicleTypes(t *testing.T) {
	in := validInput()
	in.VehicleTypes = nil
	errs := ValidateSuggestion(in)
	if _, ok := errs["vehicle_types"]; !ok {
		t.Fatalf("zero vehicle types must block submission, got %v", errs)
	}
}

func TestValidateSuggestionPhotos(t *testing.T) {
	in := validInput()
	in.PhotoSizes = nil
	if _, ok := ValidateSuggestion(in)["photos"]; !ok {
		t.Fatalf("zero photos must block submission")
	}

	in = validInput()
	in.PhotoSizes = []int64{1024, MaxPhotoSize + 1}
	if _, ok := ValidateSuggestion(in)["photos"]; !ok {
		t.Fatalf("oversized photo must block submission")
	}
}

func TestValidateSuggestionTitle(t *testing.T) {
	in := validInput()
	in.Title = "   "
	if _, ok := ValidateSuggestion(in)["title"]; !ok {
		t.Fatalf("blank title must block submission")
	}
}

func TestValidateSuggestionCoordinates(t *testing.T) {
	in := validInput()
	in.LatitudeRaw = "91"
	if _, ok := ValidateSuggestion(in)["latitude"]; !ok {
		t.Fatalf("out-of-range latitude must block submission")
	}

	in = validInput()
	in.LongitudeRaw = "not-a-number"
	if _, ok := ValidateSuggestion(in)["longitude"]; !ok {
		t.Fatalf("unparseable longitude must block submission")
	}
}

// fakeSuggestionStore records the write sequence.
type fakeSuggestionStore struct {
	listings        map[uuid.UUID]*models.Listing
	locations       []models.Location
	failLocation    error
	deletedListings []uuid.UUID
}

func newFakeSuggestionStore() *fakeSuggestionStore {
	return &fakeSuggestionStore{listings: make(map[uuid.UUID]*models.Listing)}
}

func (s *fakeSuggestionStore) CreateListing(listing *models.Listing) error {
	listing.ID = uuid.New()
	listing.ReferenceCode = "PK-TEST0001"
	s.listings[listing.ID] = listing
	return nil
}

func (s *fakeSuggestionStore) CreateLocation(location *models.Location) error {
	if s.failLocation != nil {
		return s.failLocation
	}
	s.locations = append(s.locations, *location)
	return nil
}

func (s *fakeSuggestionStore) DeleteListing(id uuid.UUID) error {
	delete(s.listings, id)
	s.deletedListings = append(s.deletedListings, id)
	return nil
}

func TestSuggestListingEndToEnd(t *testing.T) {
	store := newFakeSuggestionStore()
	in := validInput()

	listing, err := SuggestListing(store, in, []string{"https://cdn.example/photo_1.jpg"})
	if err != nil {
		t.Fatalf("SuggestListing failed: %v", err)
	}

	if listing.Status != models.StatusPending {
		t.Fatalf("status = %q, want Pending", listing.Status)
	}
	if listing.Verified {
		t.Fatalf("new suggestion must not be verified")
	}
	if listing.ReviewScore != 0 {
		t.Fatalf("review score = %v, want 0", listing.ReviewScore)
	}
	if listing.AddedBy != models.AddedByUserSuggestion {
		t.Fatalf("added_by = %q, want %q", listing.AddedBy, models.AddedByUserSuggestion)
	}
	if listing.Category != models.CategoryNonAccountable {
		t.Fatalf("category = %q, want %q", listing.Category, models.CategoryNonAccountable)
	}
	if listing.Capacity != 4 {
		t.Fatalf("capacity = %d, want 4", listing.Capacity)
	}

	var tags []string
	if err := json.Unmarshal(listing.VehicleTypes, &tags); err != nil || len(tags) != 1 || tags[0] != "Car" {
		t.Fatalf("vehicle types stored wrong: %s", listing.VehicleTypes)
	}

	if len(store.locations) != 1 {
		t.Fatalf("expected exactly one location row, got %d", len(store.locations))
	}
	loc := store.locations[0]
	if loc.ListingID != listing.ID {
		t.Fatalf("location points at %s, listing is %s", loc.ListingID, listing.ID)
	}
	if loc.Latitude != -1.2921 || loc.Longitude != 36.8219 {
		t.Fatalf("location has wrong coordinates: %+v", loc)
	}
}

func TestSuggestListingCompensatingDelete(t *testing.T) {
	store := newFakeSuggestionStore()
	store.failLocation = errors.New("location table unavailable")

	_, err := SuggestListing(store, validInput(), []string{"https://cdn.example/photo_1.jpg"})
	if err == nil {
		t.Fatalf("expected error when the location insert fails")
	}
	if !strings.Contains(err.Error(), "location") {
		t.Fatalf("error must report the location failure, got: %v", err)
	}

	if len(store.listings) != 0 {
		t.Fatalf("listing row must be rolled back after a location failure, %d remain", len(store.listings))
	}
	if len(store.deletedListings) != 1 {
		t.Fatalf("expected exactly one compensating delete, got %d", len(store.deletedListings))
	}
}

func TestSuggestListingRevalidates(t *testing.T) {
	store := newFakeSuggestionStore()
	in := validInput()
	in.CapacityRaw = "-2"

	if _, err := SuggestListing(store, in, nil); err == nil {
		t.Fatalf("invalid input must not reach the store")
	}
	if len(store.listings) != 0 {
		t.Fatalf("no write may happen before validation passes")
	}
}
