package models

import (
	"time"

	"github.com/google/uuid"
)

// UserGame is one owned game per (user, game title).
type UserGame struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_game" json:"user_id"`
	GameTitleID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_game" json:"game_title_id"`
	Platform       Platform   `gorm:"size:10;not null" json:"platform"`
	EarnedTrophies int        `gorm:"default:0" json:"earned_trophies"`
	TotalTrophies  int        `gorm:"default:0" json:"total_trophies"`
	Progress       int        `gorm:"default:0" json:"progress"`
	LastPlayedAt   *time.Time `json:"last_played_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UserAchievement is one earned achievement per (user, achievement).
type UserAchievement struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	EarnedAt      *time.Time `json:"earned_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// VirtualCompletion records a manually tracked completion for games the
// platform APIs cannot see, unique per (user, game title, platform).
type VirtualCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_virtual_completion" json:"user_id"`
	GameTitleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_virtual_completion" json:"game_title_id"`
	Platform    Platform  `gorm:"size:10;not null;uniqueIndex:idx_virtual_completion" json:"platform"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}
