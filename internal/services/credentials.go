package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMissingPSNCredentials   = errors.New("accountId, onlineId and npssoToken are required")
	ErrMissingXboxCredentials  = errors.New("xuid, gamertag and userHash are required")
	ErrMissingSteamCredentials = errors.New("steamId is required")
)

func validateCredentials(platform models.Platform, creds *dto.PlatformCredentials) error {
	switch platform {
	case models.PlatformPSN:
		if creds.AccountID == "" || creds.OnlineID == "" || creds.NpssoToken == "" {
			return ErrMissingPSNCredentials
		}
	case models.PlatformXbox:
		if creds.XUID == "" || creds.Gamertag == "" || creds.UserHash == "" {
			return ErrMissingXboxCredentials
		}
	case models.PlatformSteam:
		if creds.SteamID == "" {
			return ErrMissingSteamCredentials
		}
	}
	return nil
}

// credentialAccountID returns the external identity the credentials claim,
// the value checked against other profiles for merge collisions.
func credentialAccountID(platform models.Platform, creds *dto.PlatformCredentials) string {
	switch platform {
	case models.PlatformPSN:
		return creds.AccountID
	case models.PlatformXbox:
		return creds.XUID
	case models.PlatformSteam:
		return creds.SteamID
	}
	return ""
}

// applyCredentials stores freshly obtained platform credentials on a profile
// and resets that platform's sync state to never_synced.
func applyCredentials(tx *gorm.DB, userID uuid.UUID, platform models.Platform, creds *dto.PlatformCredentials) error {
	updates := make(map[string]interface{})

	switch platform {
	case models.PlatformPSN:
		expiresIn := creds.ExpiresIn
		if expiresIn <= 0 {
			expiresIn = 3600
		}
		expiresAt := time.Now().UTC().Add(time.Duration(expiresIn) * time.Second)
		updates["psn_account_id"] = creds.AccountID
		updates["psn_online_id"] = creds.OnlineID
		updates["psn_is_plus"] = creds.IsPlus
		updates["psn_npsso_token"] = creds.NpssoToken
		updates["psn_access_token"] = creds.AccessToken
		updates["psn_refresh_token"] = creds.RefreshToken
		updates["psn_token_expires_at"] = expiresAt
		updates["psn_sync_status"] = models.SyncNeverSynced
		updates["psn_sync_progress"] = 0
	case models.PlatformXbox:
		updates["xbox_xuid"] = creds.XUID
		updates["xbox_gamertag"] = creds.Gamertag
		updates["xbox_user_hash"] = creds.UserHash
		updates["xbox_access_token"] = creds.AccessToken
		updates["xbox_refresh_token"] = creds.RefreshToken
		updates["xbox_sync_status"] = models.SyncNeverSynced
		updates["xbox_sync_progress"] = 0
	case models.PlatformSteam:
		updates["steam_id"] = creds.SteamID
		updates["steam_api_key"] = creds.SteamAPIKey
		updates["steam_sync_status"] = models.SyncNeverSynced
		updates["steam_sync_progress"] = 0
	}

	return tx.Model(&models.Profile{}).Where("id = ?", userID).Updates(updates).Error
}

// upsertTrophySnapshot seeds the trophy profile from the level/tier the
// platform reported at link time. Existing higher values are kept.
func upsertTrophySnapshot(tx *gorm.DB, userID uuid.UUID, creds *dto.PlatformCredentials) error {
	if creds.TrophyLevel == 0 && creds.TrophyTier == 0 {
		return nil
	}

	snapshot := models.TrophyProfile{
		UserID:      userID,
		TrophyLevel: creds.TrophyLevel,
		TrophyTier:  creds.TrophyTier,
	}

	var existing models.TrophyProfile
	err := tx.First(&existing, "user_id = ?", userID).Error
	if err == nil {
		snapshot.TakeBetter(&existing)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&snapshot).Error
}
