package handler

import (
	"errors"

	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/helper"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func setTokenCookies(c *fiber.Ctx, access, refresh string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    access,
		HTTPOnly: true,
		SameSite: "None",
		Secure:   false,
		Path:     "/",
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refresh,
		HTTPOnly: true,
		SameSite: "None",
		Secure:   false,
		Path:     "/",
	})
}

func RegisterCustomer(c *fiber.Ctx) error {
	input := c.Locals("input").(model.RegisterCustomerInput)

	hashed, err := helper.HashPassword(input.Password)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	customer := model.Customer{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: hashed,
		IsActive: true,
	}
	if err := database.DB.Create(&customer).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, customer)
}

func Login(c *fiber.Ctx) error {
	input := c.Locals("input").(model.LoginInput)

	customer, err := helper.GetCustomerByEmail(input.Email)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}
	if customer == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Invalid email", errors.New("email not exists"))
	}

	if !helper.CheckPasswordHash(input.Password, customer.Password) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Invalid password", errors.New("password does not match email"))
	}

	if !customer.IsActive {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.FORBIDDEN, errors.New("account not active"))
	}

	tokenClaim := model.TokenClaim{
		CustomerId: customer.ID,
		Username:   customer.Email,
	}
	token, err := helper.GenerateAccessToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	refreshToken, err := helper.GenerateRefreshToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	setTokenCookies(c, token, refreshToken)

	return c.JSON(fiber.Map{
		"message": "login success",
		"customer": fiber.Map{
			"id":    customer.ID,
			"name":  customer.Name,
			"email": customer.Email,
			"phone": customer.Phone,
		},
	})
}

func AdminLogin(c *fiber.Ctx) error {
	input := c.Locals("input").(model.AdminLoginInput)

	account, err := helper.GetAccountByUsername(input.Username)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}
	if account == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Invalid username", errors.New("username not exists"))
	}

	if !helper.CheckPasswordHash(input.Password, account.Password) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Invalid password", errors.New("password does not match username"))
	}

	if !account.IsActive {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.FORBIDDEN, errors.New("account not active"))
	}

	tokenClaim := model.TokenClaim{
		AccountId: account.ID,
		Username:  account.Username,
	}
	token, err := helper.GenerateAccessToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	refreshToken, err := helper.GenerateRefreshToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	setTokenCookies(c, token, refreshToken)

	return c.JSON(fiber.Map{
		"message": "login success",
		"account": fiber.Map{
			"id":       account.ID,
			"username": account.Username,
			"role":     account.Role,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	c.ClearCookie("access_token", "refresh_token")
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "logout success"})
}

func Me(c *fiber.Ctx) error {
	claim, customer := helper.GetInfoCustomerFromToken(c)
	if claim.CustomerId == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not logged in", errors.New("no customer token"))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, customer)
}
