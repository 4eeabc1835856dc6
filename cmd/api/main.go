package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/onebyte2016/alx-travel-app-0x03/configs"
	"github.com/onebyte2016/alx-travel-app-0x03/database"
	"github.com/onebyte2016/alx-travel-app-0x03/handlers"
	"github.com/onebyte2016/alx-travel-app-0x03/jobs"
	"github.com/onebyte2016/alx-travel-app-0x03/notifications"
	"github.com/onebyte2016/alx-travel-app-0x03/payments"
	"github.com/onebyte2016/alx-travel-app-0x03/routes"
	"github.com/onebyte2016/alx-travel-app-0x03/services"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	database.SeedListings()
	notifications.InitEmailService()

	redisAddr := config.Config("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: config.Config("REDIS_PASSWORD"),
	})
	go notifications.RunPaymentWorker(context.Background(), rdb, database.DB)

	// The gateway stays nil without a secret key; payment requests then
	// fail fast with a configuration error instead of reaching Chapa.
	var gateway services.ChapaGateway
	if secretKey := config.Config("CHAPA_SECRET_KEY"); secretKey != "" {
		gateway = payments.NewChapaClient(secretKey)
	} else {
		log.Println("⚠️ CHAPA_SECRET_KEY not set, payment subsystem disabled.")
	}

	returnURL := config.Config("PAYMENT_RETURN_URL")
	if returnURL == "" {
		returnURL = "https://your-frontend.example/booking/thank-you"
	}
	callbackURL := config.Config("PAYMENT_CALLBACK_URL")
	if callbackURL == "" {
		callbackURL = "https://your-backend.example/api/v1/payments/chapa/callback"
	}

	paymentStore := services.NewPaymentStore(database.DB)
	paymentNotifier := notifications.NewPaymentNotifier(rdb)
	paymentService := services.NewPaymentService(paymentStore, gateway, paymentNotifier, returnURL, callbackURL)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	c := cron.New()
	c.AddFunc("0 8 * * *", jobs.SendCheckInReminders)
	go c.Start()
	log.Println("✅ Cron job for check-in reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "ALX Travel",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Africa/Addis_Ababa",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to ALX Travel API",
		})
	})

	routes.PublicRoutes(app)
	routes.AuthRoutes(app)
	routes.ListingRoutes(app)
	routes.BookingRoutes(app)
	routes.PaymentRoutes(app, paymentHandler)
	routes.UploadRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.Config("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
