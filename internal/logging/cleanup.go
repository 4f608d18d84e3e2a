package logging

import (
	"log/slog"
	"time"

	"github.com/statusxp/statusxp-backend/internal/models"
	"gorm.io/gorm"
)

// Retention in days. System logs are operator breadcrumbs; sync logs are
// user-visible history, so terminal entries are kept longer. Active sync
// logs are never pruned regardless of age.
const (
	systemLogRetentionDays = 30
	syncLogRetentionDays   = 90
)

// StartCleanup prunes aged log rows once a day until done is closed.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pruneLogs(db)
			case <-done:
				return
			}
		}
	}()
}

func pruneLogs(db *gorm.DB) {
	now := time.Now().UTC()

	result := db.Where("timestamp < ?", now.AddDate(0, 0, -systemLogRetentionDays)).
		Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("system log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("system log cleanup completed", "deleted", result.RowsAffected)
	}

	result = db.Where("status IN ? AND completed_at < ?",
		[]models.LogStatus{models.LogCancelled, models.LogCompleted, models.LogFailed},
		now.AddDate(0, 0, -syncLogRetentionDays)).
		Delete(&models.SyncLog{})
	if result.Error != nil {
		slog.Error("sync log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("sync log cleanup completed", "deleted", result.RowsAffected)
	}
}
