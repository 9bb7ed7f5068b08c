package handler

import (
	"errors"

	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func GetDiscounts(c *fiber.Ctx) error {
	filterInput := c.Locals("input").(model.FilterDiscountInput)

	query := database.DB.Model(&model.Discount{})
	if filterInput.IsActive != nil {
		query = query.Where("is_active = ?", *filterInput.IsActive)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	var discounts []model.Discount
	if err := utils.ApplyPagination(query, filterInput.Limit, filterInput.Page).
		Order("valid_until DESC").
		Find(&discounts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       discounts,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	})
}

func CreateDiscount(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateDiscountInput)

	var newDiscount model.Discount
	copier.Copy(&newDiscount, &input)
	if input.IsActive != nil {
		newDiscount.IsActive = *input.IsActive
	} else {
		newDiscount.IsActive = true
	}

	if err := database.DB.Create(&newDiscount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, newDiscount)
}

func UpdateDiscount(c *fiber.Ctx) error {
	discountId, _ := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdateDiscountInput)

	var discount model.Discount
	if err := database.DB.First(&discount, discountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	if input.Percentage != nil {
		discount.Percentage = *input.Percentage
	}
	if input.ValidFrom != nil {
		discount.ValidFrom = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		discount.ValidUntil = *input.ValidUntil
	}
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}

	if err := database.DB.Save(&discount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, discount)
}

func DeleteDiscount(c *fiber.Ctx) error {
	arrayId := c.Locals("deleteIds").(model.ArrayId)
	ids := arrayId.IDs

	// Bookings that already used a code keep their discounted totals,
	// deactivation only stops new applications.
	if err := database.DB.Model(&model.Discount{}).
		Where("id IN ?", ids).
		Update("is_active", false).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message": "discounts deactivated",
		"ids":     ids,
	})
}
