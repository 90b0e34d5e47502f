// Package db opens the database and keeps its schema up to date
package db

import (
	"errors"
	"fmt"
	"os"

	"hirescape/job-api/config"
	"hirescape/job-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(c config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch c.Driver {
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if runningInDocker() && c.DSN != ":memory:" {
			if _, err := os.Stat(c.DSN); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", c.DSN)
			}
		}

		dialector = sqlite.Open(c.DSN)
	case "postgres":
		dialector = postgres.Open(c.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", c.Driver, err)
	}

	if c.Driver == "sqlite" {
		// SQLite allows a single writer, and an in-memory database only
		// lives as long as its connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle, %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(&model.User{}, &model.Job{}, &model.JobApplication{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}

// PromoteAdmins grants the admin flag to every registered user whose email
// is in emails. Users registering later are not affected until the next start.
func PromoteAdmins(db *gorm.DB, emails []string) error {
	if len(emails) == 0 {
		return nil
	}

	r := db.
		Model(&model.User{}).
		Where("email IN ? AND is_admin = ?", emails, false).
		Update("is_admin", true)
	if r.Error != nil {
		return fmt.Errorf("failed to promote admins, %w", r.Error)
	}

	if r.RowsAffected > 0 {
		zap.L().Info("Promoted users to admin", zap.Int64("count", r.RowsAffected))
	}

	return nil
}

func runningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
