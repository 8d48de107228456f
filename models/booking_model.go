package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingConfirmed = "Confirmed"
	BookingCompleted = "Completed"
	BookingCancelled = "Cancelled"
)

// Booking keeps a snapshot of the renter and vehicle at booking time so
// lender screens stay stable even if the renter later edits their profile.
type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ListingID uuid.UUID `gorm:"not null;index" json:"listing_id"`
	RenterID  uuid.UUID `gorm:"not null" json:"renter_id"`

	RenterName  string `gorm:"size:255;not null" json:"renter_name"`
	RenterEmail string `gorm:"size:255;not null" json:"renter_email"`
	RenterPhone string `gorm:"size:20" json:"renter_phone"`

	VehiclePlate string `gorm:"size:20;not null" json:"vehicle_plate"`
	VehicleType  string `gorm:"size:30;not null" json:"vehicle_type"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Price     float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Status    string    `gorm:"size:20;not null;default:'Confirmed'" json:"status"`

	Listing Listing `gorm:"foreignkey:ListingID" json:"-"`
	Renter  User    `gorm:"foreignkey:RenterID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
