package middlewares

import (
	t_token "unsend_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenAccountID c.Locals key for the account id from token
	TokenAccountID = "AccountID"
	//TokenDeviceID c.Locals key for the device id from token
	TokenDeviceID = "DeviceID"
)

// JWTMiddleware validates the JWT from query or cookie
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query(QueryToken)

		// query 沒有就找 cookie
		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := t_token.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenAccountID, claims.AccountID)
		c.Locals(TokenDeviceID, claims.DeviceID)

		return c.Next()
	}
}

// AccountFromCtx read the account/device stored by JWTMiddleware
func AccountFromCtx(c *fiber.Ctx) (accountID, deviceID string, ok bool) {
	accountID, ok = c.Locals(TokenAccountID).(string)
	deviceID, _ = c.Locals(TokenDeviceID).(string)
	return accountID, deviceID, ok && accountID != ""
}
