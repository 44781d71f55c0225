package database

import (
	"fmt"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	// The (task_id, worker_email) unique index is what makes submitWork race-safe;
	// migration failure is fatal rather than a warning.
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Task{},
		&domain.Submission{},
		&domain.Withdrawal{},
		&domain.Payment{},
		&domain.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
