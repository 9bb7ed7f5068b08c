package handler

import (
	"errors"

	"indoor_booking/booking"
	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
)

// bookingError maps the coordinator's typed errors onto HTTP responses.
// Conflicting slot indexes ride along so the client can re-render the grid.
func bookingError(c *fiber.Ctx, err error) error {
	var unavailable *booking.SlotUnavailableError
	if errors.As(err, &unavailable) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":        "error",
			"message":       "One or more slots are no longer available",
			"conflictSlots": unavailable.Conflicts,
		})
	}

	var mismatch *booking.StateMismatchError
	if errors.As(err, &mismatch) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":   "error",
			"message":  mismatch.Error(),
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		})
	}

	var invalidDate *booking.InvalidDateError
	if errors.As(err, &invalidDate) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, invalidDate.Error(), err)
	}

	var invalidIndex *booking.InvalidSlotIndexError
	if errors.As(err, &invalidIndex) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, invalidIndex.Error(), err)
	}

	if errors.Is(err, booking.ErrVenueNotFound) || errors.Is(err, booking.ErrBookingNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
	}
	if errors.Is(err, booking.ErrDiscountExpired) || errors.Is(err, booking.ErrDiscountInactive) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}

	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
}

func CreateBooking(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateBookingInput)

	var customerId *uint
	if id, ok := c.Locals("customerId").(uint); ok && id > 0 {
		customerId = &id
	}

	bk, err := coordinator.CreateBooking(customerId, input)
	if err != nil {
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, bk)
}

func SubmitContact(c *fiber.Ctx) error {
	code := c.Params("code")
	input := c.Locals("input").(model.SubmitContactInput)

	bk, err := coordinator.SubmitContact(code, input.Phone)
	if err != nil {
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bk)
}

func CancelBooking(c *fiber.Ctx) error {
	code := c.Params("code")
	input, _ := c.Locals("input").(model.CancelBookingInput)

	bk, err := coordinator.CancelBooking(code, input.Reason)
	if err != nil {
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bk)
}

func ApplyBookingDiscount(c *fiber.Ctx) error {
	code := c.Params("code")
	input := c.Locals("input").(model.ApplyDiscountInput)

	bk, err := coordinator.ApplyDiscount(code, input.DiscountCode)
	if err != nil {
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bk)
}

func GetBookingByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	bk, err := coordinator.GetBooking(code)
	if err != nil {
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bk)
}

func GetMyBookings(c *fiber.Ctx) error {
	customerId, _ := c.Locals("customerId").(uint)
	if customerId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not logged in", errors.New("no customer token"))
	}

	var bookings []model.Booking
	if err := database.DB.Preload("Slots").Preload("Venue").
		Where("customer_id = ?", customerId).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bookings)
}
