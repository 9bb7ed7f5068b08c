package main

import (
	"log"
	"time"

	"indoor_booking/booking"
	"indoor_booking/config"
	"indoor_booking/database"
	"indoor_booking/handler"
	"indoor_booking/helper"
	"indoor_booking/router"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.Config("CORS_ORIGIN"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	grid := booking.NewGrid(
		config.ConfigInt("OPEN_HOUR", 8),
		config.ConfigInt("CLOSE_HOUR", 20),
		config.ConfigInt("BOOKING_HORIZON_DAYS", 30),
		time.FixedZone("PKT", 5*3600),
	)
	coordinator := booking.NewCoordinator(database.DB, grid, booking.Config{
		HoldTimeout:     config.ConfigDuration("HOLD_TIMEOUT", 15*time.Minute),
		AdvanceFraction: config.ConfigFloat("ADVANCE_FRACTION", 0.20),
	}, utils.NewWhatsAppNotifier())
	coordinator.ChangeHook = handler.PublishAvailability

	handler.Setup(coordinator)

	helper.StartExpiryScheduler(coordinator)
	defer helper.StopExpiryScheduler()
	helper.StartDiscountScheduler()

	router.SetupRoutes(app)

	port := config.Config("PORT")
	if port == "" {
		port = "8002"
	}
	log.Fatal(app.Listen(":" + port))
}
