package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMatches(t *testing.T) {
	event := &ListingEvent{
		Table:     "listings",
		Type:      EventUpdate,
		ListingID: uuid.New(),
		Category:  "Non-Accountable",
	}

	if !Matches("", event) {
		t.Fatalf("empty filter must match every event")
	}
	if !Matches("Non-Accountable", event) {
		t.Fatalf("matching category filter must match")
	}
	if Matches("Lender-Provided", event) {
		t.Fatalf("different category filter must not match")
	}
}

// fakeConn records everything the hub writes to it. failWrites makes every
// WriteJSON fail, standing in for a connection the peer dropped.
type fakeConn struct {
	mu         sync.Mutex
	failWrites bool
	closed     bool
	got        chan *ListingEvent
}

func newFakeConn(failWrites bool) *fakeConn {
	return &fakeConn{failWrites: failWrites, got: make(chan *ListingEvent, 8)}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.failWrites {
		return errors.New("broken pipe")
	}
	f.got <- v.(*ListingEvent)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) wasClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var hubOnce sync.Once

// startHub runs the singleton hub loop for the lifecycle tests. Register,
// Unregister and Broadcast are unbuffered, so once a send returns the hub
// has fully processed every earlier message.
func startHub() {
	hubOnce.Do(func() { go RunHub() })
}

func receiveEvent(t *testing.T, conn *fakeConn) *ListingEvent {
	t.Helper()
	select {
	case event := <-conn.got:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for feed event")
		return nil
	}
}

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	startHub()

	all := newFakeConn(false)
	lenderOnly := newFakeConn(false)
	Register <- &Client{UserID: uuid.New(), Category: "", Conn: all}
	Register <- &Client{UserID: uuid.New(), Category: "Lender-Provided", Conn: lenderOnly}
	defer func() {
		Unregister <- &Client{Conn: all}
		Unregister <- &Client{Conn: lenderOnly}
	}()

	Broadcast <- &ListingEvent{Table: "listings", Type: EventInsert, ListingID: uuid.New(), Category: "Non-Accountable"}
	if event := receiveEvent(t, all); event.Category != "Non-Accountable" {
		t.Fatalf("unfiltered subscriber got category %q", event.Category)
	}

	// A second event for the filtered category arrives on both; the filtered
	// subscriber must have skipped the first one.
	Broadcast <- &ListingEvent{Table: "listings", Type: EventUpdate, ListingID: uuid.New(), Category: "Lender-Provided"}
	receiveEvent(t, all)
	if event := receiveEvent(t, lenderOnly); event.Type != EventUpdate {
		t.Fatalf("filtered subscriber got %q, want the update it subscribed to", event.Type)
	}
	if len(lenderOnly.got) != 0 {
		t.Fatalf("filtered subscriber received %d extra events", len(lenderOnly.got))
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	startHub()

	conn := newFakeConn(false)
	witness := newFakeConn(false)
	Register <- &Client{UserID: uuid.New(), Conn: conn}
	Register <- &Client{UserID: uuid.New(), Conn: witness}
	defer func() { Unregister <- &Client{Conn: witness} }()

	Unregister <- &Client{Conn: conn}

	Broadcast <- &ListingEvent{Table: "listings", Type: EventDelete, ListingID: uuid.New(), Category: "Non-Accountable"}
	receiveEvent(t, witness)
	if len(conn.got) != 0 {
		t.Fatalf("unregistered connection still received %d events", len(conn.got))
	}
}

func TestHubEvictsConnectionsThatFailToWrite(t *testing.T) {
	startHub()

	broken := newFakeConn(true)
	healthy := newFakeConn(false)
	Register <- &Client{UserID: uuid.New(), Conn: broken}
	Register <- &Client{UserID: uuid.New(), Conn: healthy}
	defer func() { Unregister <- &Client{Conn: healthy} }()

	Broadcast <- &ListingEvent{Table: "listings", Type: EventUpdate, ListingID: uuid.New(), Category: "Lender-Provided"}
	receiveEvent(t, healthy)

	// The next event proves the hub kept running after the failed write and
	// dropped the broken connection from its table.
	Broadcast <- &ListingEvent{Table: "listings", Type: EventUpdate, ListingID: uuid.New(), Category: "Lender-Provided"}
	receiveEvent(t, healthy)

	if !broken.wasClosed() {
		t.Fatalf("failed connection was not closed")
	}
	clientsMu.RLock()
	_, stillRegistered := clients[broken]
	clientsMu.RUnlock()
	if stillRegistered {
		t.Fatalf("failed connection still registered after eviction")
	}
}
