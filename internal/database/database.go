package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/notewall/moderation-backend/internal/config"
	"github.com/notewall/moderation-backend/internal/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for every persisted model.
func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Note{},
		&models.Comment{},
		&models.Report{},
		&models.SecurityLogEntry{},
		&models.KeywordFilter{},
		&models.SystemLog{},
	)
}

// SeedKeywordFilters inserts the default banned terms when the table is
// empty, so a fresh deployment moderates out of the box.
func SeedKeywordFilters() error {
	var count int64
	if err := DB.Model(&models.KeywordFilter{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.KeywordFilter{
		{Keyword: "free money", Severity: models.FilterSeverityHigh, IsActive: true},
		{Keyword: "click here", Severity: models.FilterSeverityMedium, IsActive: true},
		{Keyword: "buy now", Severity: models.FilterSeverityMedium, IsActive: true},
		{Keyword: "casino", Severity: models.FilterSeverityHigh, IsActive: true},
		{Keyword: "crypto giveaway", Severity: models.FilterSeverityHigh, IsActive: true},
	}
	if err := DB.Create(&defaults).Error; err != nil {
		return err
	}
	slog.Info("seeded default keyword filters", "count", len(defaults))
	return nil
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
