package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSameAccount   = errors.New("cannot merge an account into itself")
	ErrAlreadyMerged = errors.New("account has already been merged")
)

// MergeError reports which step of a merge failed. The surrounding
// transaction has already been rolled back, so no partial repointing is
// visible; the step name is the breadcrumb for manual follow-up.
type MergeError struct {
	Step string
	Err  error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge incomplete at step %q: %v", e.Step, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// MergeService reassigns everything owned by one user identity to another
// and retires the source identity. Triggered when a platform link collides
// with an identity already registered under a different profile.
type MergeService struct {
	db *gorm.DB
}

func NewMergeService(db *gorm.DB) *MergeService {
	return &MergeService{db: db}
}

var activeLogStatuses = []models.LogStatus{models.LogPending, models.LogSyncing}

// MergeAccounts moves every record owned by existingID to newID inside one
// transaction, then soft-deletes the existing profile. Conflict policy per
// table:
//
//   - user_games / user_achievements / virtual_completions: rows whose
//     secondary key the target already owns are skipped and deleted with the
//     rest of the source's leftovers (the target's copy wins).
//   - sync_logs: history is repointed wholesale, but a source log still
//     pending or syncing is cancelled first when the target already has an
//     active log for the same platform, preserving the one-active-log
//     invariant.
//   - trophy_profiles: folded field-by-field, higher value wins.
//   - platform credentials: moved wholesale; the source's columns are
//     cleared first so the unique account-id indexes never collide.
func (s *MergeService) MergeAccounts(ctx context.Context, existingID, newID uuid.UUID) error {
	if existingID == newID {
		return ErrSameAccount
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source, target models.Profile
		if err := tx.First(&source, "id = ?", existingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return &MergeError{Step: "load_source", Err: err}
		}
		if source.MergedIntoUserID != nil {
			return ErrAlreadyMerged
		}
		if err := tx.First(&target, "id = ?", newID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return &MergeError{Step: "load_target", Err: err}
		}

		if err := s.repointGames(tx, existingID, newID); err != nil {
			return err
		}
		if err := s.repointAchievements(tx, existingID, newID); err != nil {
			return err
		}
		if err := s.repointCompletions(tx, existingID, newID); err != nil {
			return err
		}
		if err := s.repointSyncLogs(tx, existingID, newID); err != nil {
			return err
		}
		if err := s.mergeTrophyProfiles(tx, existingID, newID); err != nil {
			return err
		}
		if err := s.transferCredentials(tx, &source, newID); err != nil {
			return err
		}
		if err := s.retireProfile(tx, &source, newID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("accounts merged", "user_id", newID.String(), "merged_from", existingID.String(), "action", "merge")
	return nil
}

// ConfirmMerge is the full user-approved flow: merge, then apply the newly
// obtained platform credentials to the surviving profile.
func (s *MergeService) ConfirmMerge(ctx context.Context, newUserID uuid.UUID, platform models.Platform, req *dto.ConfirmMergeRequest) error {
	existingID, err := uuid.Parse(req.ExistingUserID)
	if err != nil {
		return fmt.Errorf("invalid existingUserId: %w", err)
	}
	if err := validateCredentials(platform, &req.Credentials); err != nil {
		return err
	}

	if err := s.MergeAccounts(ctx, existingID, newUserID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyCredentials(tx, newUserID, platform, &req.Credentials); err != nil {
			return err
		}
		return upsertTrophySnapshot(tx, newUserID, &req.Credentials)
	})
}

func (s *MergeService) repointGames(tx *gorm.DB, oldID, newID uuid.UUID) error {
	owned := tx.Model(&models.UserGame{}).Select("game_title_id").Where("user_id = ?", newID)
	if err := tx.Model(&models.UserGame{}).
		Where("user_id = ? AND game_title_id NOT IN (?)", oldID, owned).
		Update("user_id", newID).Error; err != nil {
		return &MergeError{Step: "repoint_games", Err: err}
	}
	// Skipped collisions: the target's copy wins, the source's is dropped.
	if err := tx.Where("user_id = ?", oldID).Delete(&models.UserGame{}).Error; err != nil {
		return &MergeError{Step: "cleanup_games", Err: err}
	}
	return nil
}

func (s *MergeService) repointAchievements(tx *gorm.DB, oldID, newID uuid.UUID) error {
	owned := tx.Model(&models.UserAchievement{}).Select("achievement_id").Where("user_id = ?", newID)
	if err := tx.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id NOT IN (?)", oldID, owned).
		Update("user_id", newID).Error; err != nil {
		return &MergeError{Step: "repoint_achievements", Err: err}
	}
	if err := tx.Where("user_id = ?", oldID).Delete(&models.UserAchievement{}).Error; err != nil {
		return &MergeError{Step: "cleanup_achievements", Err: err}
	}
	return nil
}

func (s *MergeService) repointCompletions(tx *gorm.DB, oldID, newID uuid.UUID) error {
	err := tx.Exec(`UPDATE virtual_completions SET user_id = ?
		WHERE user_id = ? AND NOT EXISTS (
			SELECT 1 FROM virtual_completions AS owned
			WHERE owned.user_id = ?
			AND owned.game_title_id = virtual_completions.game_title_id
			AND owned.platform = virtual_completions.platform)`,
		newID, oldID, newID).Error
	if err != nil {
		return &MergeError{Step: "repoint_completions", Err: err}
	}
	if err := tx.Where("user_id = ?", oldID).Delete(&models.VirtualCompletion{}).Error; err != nil {
		return &MergeError{Step: "cleanup_completions", Err: err}
	}
	return nil
}

func (s *MergeService) repointSyncLogs(tx *gorm.DB, oldID, newID uuid.UUID) error {
	now := time.Now().UTC()
	for _, platform := range models.AllPlatforms {
		var targetActive int64
		if err := tx.Model(&models.SyncLog{}).
			Where("user_id = ? AND platform = ? AND status IN ?", newID, platform, activeLogStatuses).
			Count(&targetActive).Error; err != nil {
			return &MergeError{Step: "count_sync_logs", Err: err}
		}
		if targetActive == 0 {
			continue
		}
		// Target already tracks a live sync for this platform; the source's
		// live attempt becomes history instead of a second active log.
		if err := tx.Model(&models.SyncLog{}).
			Where("user_id = ? AND platform = ? AND status IN ?", oldID, platform, activeLogStatuses).
			Updates(map[string]interface{}{
				"status":       models.LogCancelled,
				"completed_at": now,
			}).Error; err != nil {
			return &MergeError{Step: "cancel_sync_logs", Err: err}
		}
	}

	if err := tx.Model(&models.SyncLog{}).
		Where("user_id = ?", oldID).
		Update("user_id", newID).Error; err != nil {
		return &MergeError{Step: "repoint_sync_logs", Err: err}
	}
	return nil
}

func (s *MergeService) mergeTrophyProfiles(tx *gorm.DB, oldID, newID uuid.UUID) error {
	var source models.TrophyProfile
	err := tx.First(&source, "user_id = ?", oldID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return &MergeError{Step: "load_trophy_profile", Err: err}
	}

	target := models.TrophyProfile{UserID: newID}
	if err := tx.First(&target, "user_id = ?", newID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return &MergeError{Step: "load_trophy_profile", Err: err}
	}
	target.UserID = newID
	target.TakeBetter(&source)

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&target).Error; err != nil {
		return &MergeError{Step: "merge_trophy_profile", Err: err}
	}
	if err := tx.Delete(&models.TrophyProfile{}, "user_id = ?", oldID).Error; err != nil {
		return &MergeError{Step: "cleanup_trophy_profile", Err: err}
	}
	return nil
}

func (s *MergeService) transferCredentials(tx *gorm.DB, source *models.Profile, newID uuid.UUID) error {
	updates := make(map[string]interface{})

	if source.PSNAccountID != nil {
		updates["psn_account_id"] = source.PSNAccountID
		updates["psn_online_id"] = source.PSNOnlineID
		updates["psn_is_plus"] = source.PSNIsPlus
		updates["psn_npsso_token"] = source.PSNNpssoToken
		updates["psn_access_token"] = source.PSNAccessToken
		updates["psn_refresh_token"] = source.PSNRefreshToken
		updates["psn_token_expires_at"] = source.PSNTokenExpiresAt
		updates["psn_sync_status"] = source.PSNSyncStatus
		updates["last_psn_sync_at"] = source.LastPSNSyncAt
	}
	if source.XboxXUID != nil {
		updates["xbox_xuid"] = source.XboxXUID
		updates["xbox_gamertag"] = source.XboxGamertag
		updates["xbox_user_hash"] = source.XboxUserHash
		updates["xbox_access_token"] = source.XboxAccessToken
		updates["xbox_refresh_token"] = source.XboxRefreshToken
		updates["xbox_token_expires_at"] = source.XboxTokenExpiresAt
		updates["xbox_sync_status"] = source.XboxSyncStatus
		updates["last_xbox_sync_at"] = source.LastXboxSyncAt
	}
	if source.SteamID != nil {
		updates["steam_id"] = source.SteamID
		updates["steam_api_key"] = source.SteamAPIKey
		updates["steam_sync_status"] = source.SteamSyncStatus
		updates["last_steam_sync_at"] = source.LastSteamSyncAt
	}

	if len(updates) == 0 {
		return nil
	}

	// Unique indexes on the account id columns: the source must let go of
	// the identities before the target can claim them.
	if err := tx.Model(&models.Profile{}).Where("id = ?", source.ID).
		Updates(map[string]interface{}{
			"psn_account_id": nil,
			"xbox_xuid":      nil,
			"steam_id":       nil,
		}).Error; err != nil {
		return &MergeError{Step: "release_credentials", Err: err}
	}
	if err := tx.Model(&models.Profile{}).Where("id = ?", newID).Updates(updates).Error; err != nil {
		return &MergeError{Step: "transfer_credentials", Err: err}
	}
	return nil
}

func (s *MergeService) retireProfile(tx *gorm.DB, source *models.Profile, newID uuid.UUID) error {
	now := time.Now().UTC()
	if err := tx.Model(&models.Profile{}).Where("id = ?", source.ID).
		Updates(map[string]interface{}{
			"psn_account_id":      nil,
			"psn_online_id":       nil,
			"psn_npsso_token":     nil,
			"psn_access_token":    nil,
			"psn_refresh_token":   nil,
			"xbox_xuid":           nil,
			"xbox_gamertag":       nil,
			"xbox_access_token":   nil,
			"xbox_refresh_token":  nil,
			"steam_id":            nil,
			"steam_api_key":       nil,
			"merged_into_user_id": newID,
			"merged_at":           now,
		}).Error; err != nil {
		return &MergeError{Step: "retire_profile", Err: err}
	}
	if err := tx.Delete(&models.Profile{}, "id = ?", source.ID).Error; err != nil {
		return &MergeError{Step: "delete_profile", Err: err}
	}
	return nil
}
