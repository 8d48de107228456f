package jobs

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/wekesadev/park_spot/models"
)

type fakeExpiryStore struct {
	changed      bool
	markErr      error
	releaseErr   error
	markCalls    int
	releaseCalls int
}

func (f *fakeExpiryStore) MarkCompleted(bookingID uuid.UUID) (bool, error) {
	f.markCalls++
	return f.changed, f.markErr
}

func (f *fakeExpiryStore) ReleaseSlot(listingID uuid.UUID) error {
	f.releaseCalls++
	return f.releaseErr
}

func expiredBooking() models.Booking {
	return models.Booking{
		ID:        uuid.New(),
		ListingID: uuid.New(),
		Status:    models.BookingConfirmed,
	}
}

func TestCompleteExpiredBookingReleasesSlot(t *testing.T) {
	store := &fakeExpiryStore{changed: true}

	if err := completeExpiredBooking(store, expiredBooking()); err != nil {
		t.Fatalf("completeExpiredBooking: %v", err)
	}
	if store.releaseCalls != 1 {
		t.Fatalf("expected one slot release, got %d", store.releaseCalls)
	}
}

// A lender can complete or cancel a booking between the candidate scan and
// the per-booking transaction. That path already released the slot, so a
// completion that changed nothing must not release it again.
func TestCompleteExpiredBookingSkipsReleaseWhenAlreadyFinished(t *testing.T) {
	store := &fakeExpiryStore{changed: false}

	if err := completeExpiredBooking(store, expiredBooking()); err != nil {
		t.Fatalf("completeExpiredBooking: %v", err)
	}
	if store.markCalls != 1 {
		t.Fatalf("expected one status update attempt, got %d", store.markCalls)
	}
	if store.releaseCalls != 0 {
		t.Fatalf("slot released %d times for an already finished booking", store.releaseCalls)
	}
}

func TestCompleteExpiredBookingPropagatesErrors(t *testing.T) {
	markErr := errors.New("update failed")
	store := &fakeExpiryStore{markErr: markErr}

	if err := completeExpiredBooking(store, expiredBooking()); !errors.Is(err, markErr) {
		t.Fatalf("expected mark error, got %v", err)
	}
	if store.releaseCalls != 0 {
		t.Fatalf("slot released after failed status update")
	}
}
