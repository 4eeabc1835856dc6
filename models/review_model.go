package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"not null" json:"user_id"`
	ListingID uuid.UUID `gorm:"not null;index" json:"listing_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`

	User    User    `gorm:"foreignkey:UserID" json:"user,omitempty"`
	Listing Listing `gorm:"foreignkey:ListingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
