package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/database"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"github.com/onebyte2016/alx-travel-app-0x03/notifications"
	"github.com/onebyte2016/alx-travel-app-0x03/utils"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	ListingID  string  `json:"listing_id" validate:"required,uuid"`
	CheckIn    string  `json:"check_in" validate:"required"`
	CheckOut   string  `json:"check_out" validate:"required"`
	GuestName  *string `json:"guest_name,omitempty"`
	GuestEmail *string `json:"guest_email,omitempty" validate:"omitempty,email"`
}

// CreateBooking accepts both authenticated and guest bookings. A booking is
// owned by exactly one identity: the JWT user when present, otherwise the
// guest contact details, which are then mandatory.
func CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check_in must be a date in YYYY-MM-DD format"})
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check_out must be a date in YYYY-MM-DD format"})
	}
	if !checkIn.Before(checkOut) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "check_out must be after check_in"})
	}

	listingID, _ := uuid.Parse(req.ListingID)
	var listing models.Listing
	if err := database.DB.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	booking := models.Booking{
		ListingID: listing.ID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	}

	if token, ok := c.Locals("user").(*jwt.Token); ok {
		claims := token.Claims.(jwt.MapClaims)
		userID, err := uuid.Parse(claims["user_id"].(string))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
		}
		booking.UserID = &user.ID
		booking.User = &user
	} else {
		if req.GuestName == nil || *req.GuestName == "" || req.GuestEmail == nil || *req.GuestEmail == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Guests must provide name and email."})
		}
		booking.GuestName = req.GuestName
		booking.GuestEmail = req.GuestEmail
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		reference, err := utils.GenerateUniqueBookingReference(tx)
		if err != nil {
			return err
		}
		booking.Reference = reference
		return tx.Create(&booking).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}
	booking.Listing = listing

	go notifications.SendEmail(
		booking.ContactName(),
		booking.ContactEmail(),
		"Booking Confirmation",
		fmt.Sprintf("<h1>Booking Received</h1><p>Dear Customer,</p><p>Your booking <b>%s</b> for <b>%s</b> has been created.</p><p>Thank you for choosing us!</p>", booking.Reference, listing.Title),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	if err := database.DB.Preload("Listing").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	var booking models.Booking
	if err := database.DB.Preload("Listing").
		Where("id = ? AND user_id = ?", bookingID, userID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(booking)
}
