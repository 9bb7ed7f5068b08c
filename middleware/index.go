package middleware

import (
	"errors"
	"strings"

	"indoor_booking/helper"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, 401, "Missing token", errors.New("no token"))
		}

		jwtToken, err := helper.ParseToken(token)
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, 401, "Invalid token", err)
		}

		c.Locals("user", jwtToken)
		return c.Next()
	}
}

// AdminOnly requires a token that maps to an active admin account.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, isAdmin := helper.GetInfoAccountFromToken(c)
		if !isAdmin {
			return utils.ErrorResponse(c, 403, "Admin access required", errors.New("not an admin"))
		}
		c.Locals("accountId", claim.AccountId)
		return c.Next()
	}
}

// OptionalAuth attaches the customer when a valid token is present and
// lets guests through, so anonymous visitors can still hold slots.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := c.Cookies("access_token")
		if tokenString == "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			c.Locals("user", nil)
			c.Locals("customerId", uint(0))
			return c.Next()
		}

		token, err := helper.ParseToken(tokenString)
		if err != nil || !token.Valid {
			c.Locals("user", nil)
			c.Locals("customerId", uint(0))
			return c.Next()
		}

		c.Locals("user", token)

		claim, customer := helper.GetInfoCustomerFromToken(c)
		c.Locals("customerId", claim.CustomerId)
		if customer.ID > 0 {
			c.Locals("customer", &customer)
		}

		return c.Next()
	}
}
