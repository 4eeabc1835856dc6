package database

import (
	"fmt"
	"log"
	"math/rand"

	config "github.com/onebyte2016/alx-travel-app-0x03/configs"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.Review{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("Admin credentials not configured, skipping admin seed.")
		return
	}

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FirstName: config.Config("ADMIN_FIRST_NAME"),
		LastName:  config.Config("ADMIN_LAST_NAME"),
		Email:     adminEmail,
		Password:  string(hashedPassword),
		Role:      "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedListings fills an empty database with sample listings so the API is
// browsable out of the box. Gated behind SEED_LISTINGS=true.
func SeedListings() {
	if config.Config("SEED_LISTINGS") != "true" {
		return
	}

	var count int64
	if err := DB.Model(&models.Listing{}).Count(&count).Error; err != nil {
		log.Printf("🔥 Failed to check listings before seeding: %v", err)
		return
	}
	if count > 0 {
		return
	}

	locations := []string{"Lagos", "Abuja", "Kano", "Port Harcourt", "Ibadan"}
	titles := []string{"Luxury Villa", "Beach House", "City Apartment", "Cottage", "Modern Flat"}

	for i := 0; i < 10; i++ {
		listing := models.Listing{
			Title:         titles[rand.Intn(len(titles))],
			Description:   "This is a great place to stay!",
			PricePerNight: 50 + rand.Float64()*450,
			Location:      locations[rand.Intn(len(locations))],
		}
		if err := DB.Create(&listing).Error; err != nil {
			log.Printf("🔥 Failed to seed listing: %v", err)
			return
		}
	}
	log.Println("✅ Successfully seeded listings.")
}
