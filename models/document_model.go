package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ListingID uuid.UUID `gorm:"not null;index" json:"listing_id"`

	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileURL      string    `gorm:"size:255;not null" json:"file_url"`
	DocumentType string    `gorm:"size:50;not null" json:"document_type"`
	UploadedAt   time.Time `json:"uploaded_at"`

	Listing Listing `gorm:"foreignkey:ListingID" json:"-"`
}
