package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncLog is one sync attempt for a (user, platform). A user has at most one
// row per platform in a non-terminal state at a time; the sync worker (or a
// stop/force-stop request) drives rows to a terminal status. Terminal rows are
// kept as history for a retention window, then pruned.
type SyncLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Platform       Platform   `gorm:"size:10;not null;index" json:"platform"`
	Status         LogStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	GamesSynced    int        `gorm:"default:0" json:"games_synced"`
	TrophiesSynced int        `gorm:"default:0" json:"trophies_synced"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
