package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"

	CategoryLenderProvided = "Lender-Provided"
	CategoryNonAccountable = "Non-Accountable"

	AddedByUserSuggestion = "User-Suggestion"
)

type Listing struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID       uuid.UUID `gorm:"not null" json:"owner_id"`
	ReferenceCode string    `gorm:"size:12;unique" json:"reference_code"`

	Title       string  `gorm:"size:255;not null" json:"title"`
	Category    string  `gorm:"size:30;not null;default:'Lender-Provided'" json:"category"`
	HourlyPrice float64 `gorm:"type:numeric(10,2);default:0.00" json:"hourly_price"`
	Capacity    int     `gorm:"default:0" json:"capacity"`
	Occupancy   int     `gorm:"default:0" json:"occupancy"`

	VehicleTypes datatypes.JSON `gorm:"type:jsonb" json:"vehicle_types"`
	Photos       datatypes.JSON `gorm:"type:jsonb" json:"photos"`

	Verified    bool    `gorm:"default:false" json:"verified"`
	ReviewScore float64 `gorm:"type:numeric(3,2);default:0.00" json:"review_score"`

	Status          string  `gorm:"size:20;not null;default:'Pending'" json:"status"`
	RejectionReason *string `gorm:"type:text" json:"rejection_reason"`
	AddedBy         string  `gorm:"size:30" json:"added_by"`

	CertificateURL *string `gorm:"size:255" json:"certificate_url"`

	Owner    User     `gorm:"foreignkey:OwnerID" json:"-"`
	Location Location `gorm:"foreignkey:ListingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
