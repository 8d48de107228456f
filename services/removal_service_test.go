package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/models"
)

func TestPublicIDFromURL(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/v1712345/park_spot_documents/doc_abc123.pdf"
	publicID, ok := PublicIDFromURL(url)
	if !ok {
		t.Fatalf("expected a public id from %q", url)
	}
	if publicID != "park_spot_documents/doc_abc123" {
		t.Fatalf("publicID = %q", publicID)
	}
}

func TestPublicIDFromURLUnparseable(t *testing.T) {
	for _, url := range []string{
		"https://cdn.example/some/other/path.pdf",
		"",
		"not a url",
	} {
		if _, ok := PublicIDFromURL(url); ok {
			t.Fatalf("%q must not yield a public id", url)
		}
	}
}

type fakeRemovalStore struct {
	documents      []models.Document
	docsDeleted    bool
	locDeleted     bool
	listingDeleted bool
}

func (s *fakeRemovalStore) ListingDocuments(listingID uuid.UUID) ([]models.Document, error) {
	return s.documents, nil
}

func (s *fakeRemovalStore) DeleteDocuments(listingID uuid.UUID) error {
	s.docsDeleted = true
	s.documents = nil
	return nil
}

func (s *fakeRemovalStore) DeleteLocation(listingID uuid.UUID) error {
	s.locDeleted = true
	return nil
}

func (s *fakeRemovalStore) DeleteListing(listingID uuid.UUID) error {
	s.listingDeleted = true
	return nil
}

type fakeBlobRemover struct {
	removed []string
	failOn  string
}

func (r *fakeBlobRemover) Remove(publicID string) error {
	if r.failOn != "" && publicID == r.failOn {
		return errors.New("storage unavailable")
	}
	r.removed = append(r.removed, publicID)
	return nil
}

func documentFixture(listingID uuid.UUID, suffix string) models.Document {
	return models.Document{
		ID:        uuid.New(),
		ListingID: listingID,
		FileURL:   "https://res.cloudinary.com/demo/raw/upload/v1/park_spot_documents/" + suffix + ".pdf",
	}
}

func TestDeleteListingCascade(t *testing.T) {
	listingID := uuid.New()
	store := &fakeRemovalStore{documents: []models.Document{
		documentFixture(listingID, "doc_one"),
		documentFixture(listingID, "doc_two"),
	}}
	blobs := &fakeBlobRemover{}

	if err := DeleteListingCascade(store, blobs, listingID); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	if len(blobs.removed) != 2 {
		t.Fatalf("expected 2 blob removals, got %d", len(blobs.removed))
	}
	if len(store.documents) != 0 || !store.docsDeleted {
		t.Fatalf("document rows must be gone after the cascade")
	}
	if !store.locDeleted || !store.listingDeleted {
		t.Fatalf("location and listing rows must be deleted, store: %+v", store)
	}
}

func TestDeleteListingCascadeAbortsOnBlobFailure(t *testing.T) {
	listingID := uuid.New()
	store := &fakeRemovalStore{documents: []models.Document{
		documentFixture(listingID, "doc_one"),
		documentFixture(listingID, "doc_two"),
	}}
	blobs := &fakeBlobRemover{failOn: "park_spot_documents/doc_two"}

	err := DeleteListingCascade(store, blobs, listingID)
	if err == nil {
		t.Fatalf("expected the cascade to abort on blob failure")
	}

	if store.docsDeleted || store.locDeleted || store.listingDeleted {
		t.Fatalf("no rows may be deleted after an aborted cascade, store: %+v", store)
	}
}

func TestDeleteListingCascadeSkipsUnparseableURLs(t *testing.T) {
	listingID := uuid.New()
	foreign := models.Document{
		ID:        uuid.New(),
		ListingID: listingID,
		FileURL:   "https://cdn.example/legacy/import.pdf",
	}
	store := &fakeRemovalStore{documents: []models.Document{
		foreign,
		documentFixture(listingID, "doc_one"),
	}}
	blobs := &fakeBlobRemover{}

	if err := DeleteListingCascade(store, blobs, listingID); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if len(blobs.removed) != 1 {
		t.Fatalf("unparseable URL must be skipped, removed: %v", blobs.removed)
	}
	if !store.listingDeleted {
		t.Fatalf("cascade must still complete")
	}
}
