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

func CreateVenue() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateVenueInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		var existing model.Venue
		err := database.DB.Where("name = ?", input.Name).First(&existing).Error
		if err == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Venue name already exists", errors.New("duplicate venue name"))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
		}

		c.Locals("input", input)
		return c.Next()
	}
}

func UpdateVenue() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.UpdateVenueInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}

func FilterVenue() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.FilterVenueInput
		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}
