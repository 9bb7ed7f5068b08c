package validate

import (
	"errors"
	"fmt"
	"strconv"

	"indoor_booking/constants"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		c.Locals("inputId", valueKey)
		return c.Next()
	}
}

func Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.ArrayId

		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid input %s", err.Error()), err)
		}

		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}

		if len(input.IDs) == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "IDs to delete must not be empty", errors.New("empty ids"))
		}

		c.Locals("deleteIds", input)
		return c.Next()
	}
}
