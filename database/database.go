package database

import (
	"errors"
	"fmt"
	"time"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// bookingOverlapConstraint keeps two active bookings of one tutor from
// sharing any instant of the half-open window [start_time, end_time).
const bookingOverlapConstraint = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (
				tutor_id WITH =,
				tstzrange(start_time, end_time, '[)') WITH &&
			) WHERE (status IN ('PENDING', 'CONFIRMED'));
	END IF;
END $$;`

func Connect(settings config.Settings) (*gorm.DB, error) {
	db, err := Open(settings.DBDriver, settings.DatabaseURL, settings.LogLevel == "debug")
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", settings.DBDriver).Msg("database connected")
	return db, nil
}

// Open returns a GORM handle for driver ("postgres" or "sqlite"). SQLite is
// pinned to a single connection so in-memory databases stay shared and
// writers serialize.
func Open(driver, dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	level := logger.Silent
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(level),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.TutorProfile{},
		&models.StudentProfile{},
		&models.Booking{},
		&models.Payment{},
		&models.Review{},
		&models.Message{},
		&models.Earning{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
			return fmt.Errorf("enable btree_gist: %w", err)
		}
		if err := db.Exec(bookingOverlapConstraint).Error; err != nil {
			return fmt.Errorf("booking overlap constraint: %w", err)
		}
	}
	log.Info().Msg("database migration successful")
	return nil
}

// SeedAdmin creates the configured admin account once. It is a no-op when
// ADMIN_EMAIL or ADMIN_PASSWORD is empty.
func SeedAdmin(db *gorm.DB, settings config.Settings) error {
	if settings.AdminEmail == "" || settings.AdminPassword == "" {
		log.Warn().Msg("admin credentials not configured, skipping admin seed")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", settings.AdminEmail).First(&existing).Error
	if err == nil {
		log.Info().Msg("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(settings.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Name:     settings.AdminFullName,
		Email:    settings.AdminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	log.Info().Str("email", admin.Email).Msg("admin user seeded")
	return nil
}
