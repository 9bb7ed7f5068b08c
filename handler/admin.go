package handler

import (
	"time"

	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func GetBookings(c *fiber.Ctx) error {
	filterInput := c.Locals("input").(model.FilterBookingInput)

	db := database.DB
	query := db.Model(&model.Booking{})

	if filterInput.VenueId > 0 {
		query = query.Where("venue_id = ?", filterInput.VenueId)
	}
	if filterInput.Date != "" {
		query = query.Where("date = ?", filterInput.Date)
	}
	if filterInput.Status != "" {
		query = query.Where("status = ?", filterInput.Status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	var bookings []model.Booking
	if err := utils.ApplyPagination(query, filterInput.Limit, filterInput.Page).
		Preload("Slots").
		Preload("Venue").
		Preload("Customer").
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       bookings,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	})
}

// ConfirmBooking is the manual admin step after the venue has verified the
// advance payment on their side. Sends the confirmation email with the
// QR voucher attached.
func ConfirmBooking(c *fiber.Ctx) error {
	code := c.Params("code")

	bk, err := coordinator.ConfirmBooking(code)
	if err != nil {
		return bookingError(c, err)
	}

	var customer model.Customer
	if bk.CustomerId != nil {
		if err := database.DB.First(&customer, *bk.CustomerId).Error; err != nil {
			customer = model.Customer{}
		}
	}
	if customer.Email != "" {
		slots := make([]string, 0, len(bk.Slots))
		grid := coordinator.Grid()
		for _, s := range bk.Slots {
			start, end := grid.SlotTimes(s.SlotIndex)
			slots = append(slots, start+"-"+end)
		}
		utils.SendBookingConfirmationEmail(customer.Email, utils.BookingConfirmationData{
			BookingCode:   bk.PublicCode,
			VenueName:     bk.Venue.Name,
			Date:          bk.Date,
			SlotTimes:     slots,
			TotalAmount:   bk.TotalAmount,
			AdvanceAmount: bk.AdvanceAmount,
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bk)
}

func AdminCancelBooking(c *fiber.Ctx) error {
	code := c.Params("code")
	input, _ := c.Locals("input").(model.CancelBookingInput)

	reason := input.Reason
	if reason == "" {
		reason = "cancelled by venue staff"
	}

	bk, err := coordinator.CancelBooking(code, reason)
	if err != nil {
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bk)
}

// Dashboard aggregates today's numbers for the admin landing page.
func Dashboard(c *fiber.Ctx) error {
	db := database.DB
	today := time.Now().Format("2006-01-02")

	var todayBookings int64
	db.Model(&model.Booking{}).
		Where("date = ? AND status NOT IN ?", today, []string{string(model.BookingCancelled), string(model.BookingExpired)}).
		Count(&todayBookings)

	var pendingConfirmation int64
	db.Model(&model.Booking{}).
		Where("status = ?", model.BookingAdvancePaid).
		Count(&pendingConfirmation)

	var awaitingPayment int64
	db.Model(&model.Booking{}).
		Where("status IN ?", []string{string(model.BookingHeld), string(model.BookingAdvancePending)}).
		Count(&awaitingPayment)

	type revenueRow struct {
		Total float64
	}
	var revenue revenueRow
	db.Model(&model.Booking{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("date = ? AND status = ?", today, model.BookingConfirmed).
		Scan(&revenue)

	var activeVenues int64
	db.Model(&model.Venue{}).Where("is_active = ?", true).Count(&activeVenues)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"date":                today,
		"todayBookings":       todayBookings,
		"pendingConfirmation": pendingConfirmation,
		"awaitingPayment":     awaitingPayment,
		"todayRevenue":        revenue.Total,
		"activeVenues":        activeVenues,
	})
}
