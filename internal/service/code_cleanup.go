package service

import (
	"fmt"
	"time"

	"hirescape/job-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClearExpiredCodes wipes one-time codes issued more than ttl before now.
// A code and its issue time are always cleared together.
func ClearExpiredCodes(db *gorm.DB, now time.Time, ttl time.Duration) (int64, error) {
	cutoff := now.Add(-ttl)
	var cleared int64

	err := db.Transaction(func(tx *gorm.DB) error {
		r := tx.
			Model(&model.User{}).
			Where("verification_code_issued_at < ?", cutoff).
			Updates(map[string]any{
				"verification_code":           nil,
				"verification_code_issued_at": nil,
			})
		if r.Error != nil {
			return r.Error
		}
		cleared += r.RowsAffected

		r = tx.
			Model(&model.User{}).
			Where("forgot_password_code_issued_at < ?", cutoff).
			Updates(map[string]any{
				"forgot_password_code":           nil,
				"forgot_password_code_issued_at": nil,
			})
		if r.Error != nil {
			return r.Error
		}
		cleared += r.RowsAffected

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired codes, %w", err)
	}

	return cleared, nil
}

// CodeCleanup periodically clears one-time codes that can't be used
// anymore. It blocks, so run it in its own goroutine.
func CodeCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)
	defer ticker.Stop()

	zap.L().Debug("Code cleanup attached", zap.Duration("tick_every", t))

	for range ticker.C {
		n, err := ClearExpiredCodes(db, time.Now(), CodeTTL)
		if err != nil {
			zap.L().Error("Failed to cleanup expired codes", zap.Error(err))
			continue
		}

		if n > 0 {
			zap.L().Debug("Cleaned up expired codes", zap.Int64("users", n))
		}
	}
}
