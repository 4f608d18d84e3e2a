package models

import (
	"time"

	"github.com/google/uuid"
)

// TrophyProfile is the 1:1 trophy-level aggregate for a profile. During an
// account merge the two rows are folded field-by-field, keeping the higher
// value of each counter.
type TrophyProfile struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TrophyLevel   int       `gorm:"default:0" json:"trophy_level"`
	TrophyTier    int       `gorm:"default:0" json:"trophy_tier"`
	BronzeCount   int       `gorm:"default:0" json:"bronze_count"`
	SilverCount   int       `gorm:"default:0" json:"silver_count"`
	GoldCount     int       `gorm:"default:0" json:"gold_count"`
	PlatinumCount int       `gorm:"default:0" json:"platinum_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TakeBetter folds other into t, keeping the more advanced value per field.
func (t *TrophyProfile) TakeBetter(other *TrophyProfile) {
	if other == nil {
		return
	}
	t.TrophyLevel = max(t.TrophyLevel, other.TrophyLevel)
	t.TrophyTier = max(t.TrophyTier, other.TrophyTier)
	t.BronzeCount = max(t.BronzeCount, other.BronzeCount)
	t.SilverCount = max(t.SilverCount, other.SilverCount)
	t.GoldCount = max(t.GoldCount, other.GoldCount)
	t.PlatinumCount = max(t.PlatinumCount, other.PlatinumCount)
}
