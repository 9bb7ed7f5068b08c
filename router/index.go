package router

import (
	"indoor_booking/handler"
	"indoor_booking/middleware"
	"indoor_booking/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	auth := v1.Group("/auth")
	auth.Post("/register", validate.RegisterCustomer(), handler.RegisterCustomer)
	auth.Post("/login", validate.Login(), handler.Login)
	auth.Post("/admin/login", validate.AdminLogin(), handler.AdminLogin)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", middleware.Protected(), handler.Me)

	venue := v1.Group("/venue", logger.New())
	venue.Get("/", validate.FilterVenue(), handler.GetVenues)
	venue.Get("/slug/:slug", handler.GetVenueBySlug)
	venue.Get("/:venueId/availability", validate.GetById("venueId"), handler.GetVenueAvailability)
	venue.Get("/:venueId/live", websocket.New(handler.AvailabilityWebsocket))
	venue.Post("/", middleware.Protected(), middleware.AdminOnly(), validate.CreateVenue(), handler.CreateVenue)
	venue.Put("/:venueId", middleware.Protected(), middleware.AdminOnly(), validate.GetById("venueId"), validate.UpdateVenue(), handler.UpdateVenue)
	venue.Delete("/", middleware.Protected(), middleware.AdminOnly(), validate.Delete(), handler.DeleteVenue)
	venue.Post("/:venueId/media", middleware.Protected(), middleware.AdminOnly(), validate.GetById("venueId"), handler.AddVenueMedia)
	venue.Delete("/media", middleware.Protected(), middleware.AdminOnly(), validate.Delete(), handler.DeleteVenueMedia)

	v1.Post("/cloudinary-signature", middleware.Protected(), middleware.AdminOnly(), handler.GenerateUploadSignature)

	booking := v1.Group("/booking", logger.New())
	booking.Post("/", middleware.OptionalAuth(), validate.CreateBooking(), handler.CreateBooking)
	booking.Get("/my", middleware.Protected(), middleware.OptionalAuth(), handler.GetMyBookings)
	booking.Get("/:code", handler.GetBookingByCode)
	booking.Post("/:code/contact", validate.SubmitContact(), handler.SubmitContact)
	booking.Post("/:code/discount", validate.ApplyDiscount(), handler.ApplyBookingDiscount)
	booking.Post("/:code/cancel", validate.CancelBooking(), handler.CancelBooking)

	payment := v1.Group("/payment", logger.New())
	payment.Post("/", validate.CreatePayment(), handler.InitPayment)
	payment.Post("/callback", validate.GatewayCallback(), handler.GatewayCallback)

	discount := v1.Group("/discount", logger.New())
	discount.Get("/", middleware.Protected(), middleware.AdminOnly(), validate.FilterDiscount(), handler.GetDiscounts)
	discount.Post("/", middleware.Protected(), middleware.AdminOnly(), validate.CreateDiscount(), handler.CreateDiscount)
	discount.Put("/:discountId", middleware.Protected(), middleware.AdminOnly(), validate.GetById("discountId"), validate.UpdateDiscount(), handler.UpdateDiscount)
	discount.Delete("/", middleware.Protected(), middleware.AdminOnly(), validate.Delete(), handler.DeleteDiscount)

	admin := v1.Group("/admin", logger.New())
	admin.Get("/dashboard", middleware.Protected(), middleware.AdminOnly(), handler.Dashboard)
	admin.Get("/bookings", middleware.Protected(), middleware.AdminOnly(), validate.FilterBooking(), handler.GetBookings)
	admin.Post("/bookings/:code/confirm", middleware.Protected(), middleware.AdminOnly(), handler.ConfirmBooking)
	admin.Post("/bookings/:code/cancel", middleware.Protected(), middleware.AdminOnly(), validate.CancelBooking(), handler.AdminCancelBooking)
}
