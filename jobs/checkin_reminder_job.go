package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/onebyte2016/alx-travel-app-0x03/database"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"github.com/onebyte2016/alx-travel-app-0x03/notifications"
)

// SendCheckInReminders emails everyone whose stay starts tomorrow.
func SendCheckInReminders() {
	log.Println("Running job: SendCheckInReminders...")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var upcomingBookings []models.Booking
	err := database.DB.
		Preload("User").
		Preload("Listing").
		Where("check_in = ?", tomorrow).
		Find(&upcomingBookings).Error
	if err != nil {
		log.Printf("Error checking for upcoming check-ins: %v", err)
		return
	}

	if len(upcomingBookings) == 0 {
		return
	}

	for _, booking := range upcomingBookings {
		email := booking.ContactEmail()
		if email == "" {
			continue
		}

		log.Printf("Sending check-in reminder for booking %s", booking.Reference)

		emailSubject := "Reminder: Your Stay Starts Tomorrow!"
		emailBody := fmt.Sprintf(
			"<h1>Check-In Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your stay at <b>%s</b> (%s) starts tomorrow, %s.</p><p><b>Booking Reference:</b> %s</p>",
			booking.Listing.Title,
			booking.Listing.Location,
			booking.CheckIn.Format("January 2, 2006"),
			booking.Reference,
		)

		go notifications.SendEmail(booking.ContactName(), email, emailSubject, emailBody)
	}
}
