package models

import (
	"time"

	"github.com/google/uuid"
)

type Listing struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	PricePerNight float64   `gorm:"type:numeric(8,2);not null" json:"price_per_night"`
	Location      string    `gorm:"size:255;not null" json:"location"`
	ImageURL      *string   `gorm:"size:255" json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
