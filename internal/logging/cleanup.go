package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/notewall/moderation-backend/internal/models"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than
// 30 days. Security log entries are exempt: that table is append-only and
// retained indefinitely for audit.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -30)
				result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
				if result.Error != nil {
					slog.Error("log cleanup failed", "error", result.Error)
				} else if result.RowsAffected > 0 {
					slog.Info("log cleanup completed", "deleted", result.RowsAffected)
				}
			case <-done:
				return
			}
		}
	}()
}
