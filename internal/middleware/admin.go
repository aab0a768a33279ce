package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/notewall/moderation-backend/internal/config"
	"github.com/notewall/moderation-backend/internal/dto"
	"github.com/notewall/moderation-backend/internal/models"
)

// AdminRequired guards the moderation panel. Access is granted by:
// 1. the X-Admin-Token header matching ADMIN_TOKEN,
// 2. the JWT email/sub appearing in the config admin lists, or
// 3. the user's DB role being "admin".
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if c.Get("X-Admin-Token") == cfg.AdminToken {
				return c.Next()
			}
		}

		sub, err := UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, UserEmail(c)) || contains(adminUserIDs, sub) {
			return c.Next()
		}

		if userID, err := uuid.Parse(sub); err == nil {
			var user models.User
			if err := db.First(&user, "id = ?", userID).Error; err == nil {
				if user.Role == "admin" {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
