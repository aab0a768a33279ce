package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/notewall/moderation-backend/internal/config"
	"github.com/notewall/moderation-backend/internal/dto"
)

var ErrNoUser = errors.New("no authenticated user in context")

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// UserID extracts the authenticated user's id (JWT sub claim) set by
// JWTProtected.
func UserID(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return "", ErrNoUser
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoUser
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrNoUser
	}
	return sub, nil
}

// UserEmail extracts the email claim, if present.
func UserEmail(c *fiber.Ctx) string {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}
