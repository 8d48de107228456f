package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Conn is the slice of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Client is one feed subscription. Category narrows the feed to a single
// listing category; empty means every listing change.
type Client struct {
	UserID   uuid.UUID
	Category string
	Conn     Conn
}

// ListingEvent mirrors a committed change to the listings table.
type ListingEvent struct {
	Table     string    `json:"table"`
	Type      string    `json:"type"`
	ListingID uuid.UUID `json:"listing_id"`
	Category  string    `json:"category"`
	Status    string    `json:"status,omitempty"`
}

type subscriber struct {
	category string
	conn     Conn
}

var clients = make(map[Conn]subscriber)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *ListingEvent)

// Matches reports whether an event should reach a subscription with the
// given category filter.
func Matches(filter string, event *ListingEvent) bool {
	return filter == "" || filter == event.Category
}

// PublishListingChange is called by handlers after a successful listing
// mutation. Send is non-blocking relative to the caller's request.
func PublishListingChange(eventType string, listingID uuid.UUID, category, status string) {
	go func() {
		Broadcast <- &ListingEvent{
			Table:     "listings",
			Type:      eventType,
			ListingID: listingID,
			Category:  category,
			Status:    status,
		}
	}()
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Feed client registered: %s (category=%q)", client.UserID, client.Category)
			clientsMu.Lock()
			clients[client.Conn] = subscriber{category: client.Category, conn: client.Conn}
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Feed client unregistered: %s", client.UserID)
			clientsMu.Lock()
			delete(clients, client.Conn)
			clientsMu.Unlock()
		case event := <-Broadcast:
			var stale []Conn
			clientsMu.RLock()
			for conn, sub := range clients {
				if !Matches(sub.category, event) {
					continue
				}
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending feed event: %v", err)
					conn.Close()
					stale = append(stale, conn)
				}
			}
			clientsMu.RUnlock()

			if len(stale) > 0 {
				clientsMu.Lock()
				for _, conn := range stale {
					delete(clients, conn)
				}
				clientsMu.Unlock()
			}
		}
	}
}
