package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingNightsAndTotalPrice(t *testing.T) {
	booking := Booking{
		CheckIn:  date(2026, 9, 1),
		CheckOut: date(2026, 9, 4),
		Listing:  Listing{PricePerNight: 500},
	}

	assert.Equal(t, 3, booking.Nights())
	assert.Equal(t, 1500.0, booking.TotalPrice())
}

func TestBookingNightsNeverNegative(t *testing.T) {
	booking := Booking{
		CheckIn:  date(2026, 9, 4),
		CheckOut: date(2026, 9, 1),
		Listing:  Listing{PricePerNight: 500},
	}

	assert.Equal(t, 0, booking.Nights())
	assert.Equal(t, 0.0, booking.TotalPrice())
}

func TestBookingContactDetails(t *testing.T) {
	userID := uuid.New()
	owned := Booking{
		UserID: &userID,
		User:   &User{ID: userID, FirstName: "Abel", LastName: "Tesfaye", Email: "abel@example.com"},
	}
	assert.Equal(t, "abel@example.com", owned.ContactEmail())
	assert.Equal(t, "Abel Tesfaye", owned.ContactName())

	guestName := "Guest User"
	guestEmail := "guest@example.com"
	guest := Booking{GuestName: &guestName, GuestEmail: &guestEmail}
	assert.Equal(t, "guest@example.com", guest.ContactEmail())
	assert.Equal(t, "Guest User", guest.ContactName())

	var empty Booking
	assert.Equal(t, "", empty.ContactEmail())
	assert.Equal(t, "", empty.ContactName())
}
