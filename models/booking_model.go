package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is either owned by a registered user or carries guest contact
// details, never both.
type Booking struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     *uuid.UUID `gorm:"index" json:"user_id"`
	GuestName  *string    `gorm:"size:255" json:"guest_name"`
	GuestEmail *string    `gorm:"size:255" json:"guest_email"`
	ListingID  uuid.UUID  `gorm:"not null" json:"listing_id"`
	Reference  string     `gorm:"size:20;not null;unique" json:"reference"`
	CheckIn    time.Time  `gorm:"type:date;not null" json:"check_in"`
	CheckOut   time.Time  `gorm:"type:date;not null" json:"check_out"`

	User    *User   `gorm:"foreignkey:UserID" json:"user,omitempty"`
	Listing Listing `gorm:"foreignkey:ListingID" json:"listing,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) Nights() int {
	nights := int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

// TotalPrice requires the Listing association to be loaded.
func (b *Booking) TotalPrice() float64 {
	return float64(b.Nights()) * b.Listing.PricePerNight
}

// ContactEmail returns the address booking notifications go to.
func (b *Booking) ContactEmail() string {
	if b.User != nil && b.User.Email != "" {
		return b.User.Email
	}
	if b.GuestEmail != nil {
		return *b.GuestEmail
	}
	return ""
}

func (b *Booking) ContactName() string {
	if b.User != nil {
		return b.User.FullName()
	}
	if b.GuestName != nil {
		return *b.GuestName
	}
	return ""
}
