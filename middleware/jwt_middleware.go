package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crmapi/models"
	"crmapi/utils"
)

// Protected resolves the bearer token to an active user and stores it in
// the request context. Every failure mode — missing or malformed header,
// bad token, unknown subject, deactivated account — answers with the same
// body so callers cannot probe which accounts exist.
func Protected(db *gorm.DB, tm *utils.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return unauthorized(c)
		}

		username, err := tm.Parse(tokenParts[1])
		if err != nil {
			return unauthorized(c)
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			return unauthorized(c)
		}

		if !user.IsActive {
			return unauthorized(c)
		}

		c.Locals("user", &user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Invalid or inactive authentication credentials",
	})
}
