package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/database"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"gorm.io/gorm"
)

type ListingRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	PricePerNight float64 `json:"price_per_night" validate:"required,gt=0"`
	Location      string  `json:"location" validate:"required"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
}

func CreateListing(c *fiber.Ctx) error {
	var req ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	listing := models.Listing{
		Title:         req.Title,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
	}
	if err := database.DB.Create(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create listing"})
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

func GetListings(c *fiber.Ctx) error {
	query := database.DB.Order("created_at desc")
	if location := c.Query("location"); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listings"})
	}

	return c.JSON(listings)
}

func GetListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID format"})
	}

	var listing models.Listing
	if err := database.DB.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(listing)
}

func UpdateListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID format"})
	}

	var listing models.Listing
	if err := database.DB.First(&listing, "id = ?", listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	var req ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	listing.Title = req.Title
	listing.Description = req.Description
	listing.PricePerNight = req.PricePerNight
	listing.Location = req.Location
	listing.ImageURL = req.ImageURL
	if err := database.DB.Save(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update listing"})
	}

	return c.JSON(listing)
}

func DeleteListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID format"})
	}

	result := database.DB.Delete(&models.Listing{}, "id = ?", listingID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete listing"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	return c.JSON(fiber.Map{"message": "Listing deleted"})
}
