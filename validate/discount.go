package validate

import (
	"errors"

	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CreateDiscount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateDiscountInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}
		if !input.ValidFrom.IsZero() && input.ValidUntil.Before(input.ValidFrom) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "validUntil must be after validFrom", errors.New("invalid window"))
		}

		var existing model.Discount
		err := database.DB.Where("code = ?", input.Code).First(&existing).Error
		if err == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Discount code already exists", errors.New("duplicate code"))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func UpdateDiscount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateDiscountInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}
		if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "validUntil must be after validFrom", errors.New("invalid window"))
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func FilterDiscount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterDiscountInput
		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}
