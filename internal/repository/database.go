// Package repository provides the data access layer using GORM.
//
// All multi-step mutations run inside DB.Transaction so that concurrent
// conflicting writes serialize at the store. The partial unique index on
// active events is the storage-level backstop for the booking pre-check.
package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/models"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// DB holds the database connection.
type DB struct {
	*gorm.DB
}

// NewDB creates a new database connection.
func NewDB(cfg *config.PostgresConfig, log *logger.Logger) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	var gormLogLevel gormlogger.LogLevel
	switch log.GetLogger().GetLevel() {
	case 0: // debug
		gormLogLevel = gormlogger.Info
	default:
		gormLogLevel = gormlogger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
		// Surfaces unique violations as gorm.ErrDuplicatedKey so the booking
		// race can be translated to a domain error.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to PostgreSQL")

	return &DB{db}, nil
}

// AutoMigrate runs database migrations for all models and creates the
// partial unique index that guards active booking slots.
func (db *DB) AutoMigrate() error {
	if err := db.DB.AutoMigrate(
		&models.User{},
		&models.UserRoleTag{},
		&models.Event{},
		&models.Blockage{},
		&models.VacationPeriod{},
	); err != nil {
		return err
	}

	// Uniqueness must be scoped to active rows: cancelled events keep their
	// (user_id, starts_at) pair but free the slot for rebooking. A plain
	// composite unique over deleted_at cannot express that, a partial index can.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_events_active_slot
		 ON events (user_id, starts_at) WHERE deleted_at IS NULL`,
	).Error
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is healthy.
func (db *DB) Health() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
