package handler

import "indoor_booking/booking"

var coordinator *booking.Coordinator

// Setup injects the booking coordinator the handlers delegate to.
// Must be called before the routes are registered.
func Setup(c *booking.Coordinator) {
	coordinator = c
}
