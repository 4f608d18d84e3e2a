package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is one user identity. The primary key equals the auth provider's
// user id (JWT sub). Platform account id columns carry unique indexes: an
// external platform identity may belong to at most one profile, which is
// what forces account merges.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName *string   `gorm:"size:100" json:"display_name"`
	AvatarURL   *string   `gorm:"size:500" json:"avatar_url"`

	// PSN
	PSNAccountID      *string    `gorm:"column:psn_account_id;size:64;uniqueIndex" json:"psn_account_id"`
	PSNOnlineID       *string    `gorm:"column:psn_online_id;size:64" json:"psn_online_id"`
	PSNAvatarURL      *string    `gorm:"column:psn_avatar_url;size:500" json:"-"`
	PSNIsPlus         bool       `gorm:"column:psn_is_plus" json:"psn_is_plus"`
	PSNNpssoToken     *string    `gorm:"column:psn_npsso_token;type:text" json:"-"`
	PSNAccessToken    *string    `gorm:"column:psn_access_token;type:text" json:"-"`
	PSNRefreshToken   *string    `gorm:"column:psn_refresh_token;type:text" json:"-"`
	PSNTokenExpiresAt *time.Time `gorm:"column:psn_token_expires_at" json:"-"`
	PSNSyncStatus     SyncStatus `gorm:"column:psn_sync_status;size:20;default:'never_synced'" json:"psn_sync_status"`
	PSNSyncProgress   int        `gorm:"column:psn_sync_progress;default:0" json:"psn_sync_progress"`
	LastPSNSyncAt     *time.Time `gorm:"column:last_psn_sync_at" json:"last_psn_sync_at"`

	// Xbox
	XboxXUID           *string    `gorm:"column:xbox_xuid;size:64;uniqueIndex" json:"xbox_xuid"`
	XboxGamertag       *string    `gorm:"column:xbox_gamertag;size:64" json:"xbox_gamertag"`
	XboxUserHash       *string    `gorm:"column:xbox_user_hash;size:128" json:"-"`
	XboxAccessToken    *string    `gorm:"column:xbox_access_token;type:text" json:"-"`
	XboxRefreshToken   *string    `gorm:"column:xbox_refresh_token;type:text" json:"-"`
	XboxTokenExpiresAt *time.Time `gorm:"column:xbox_token_expires_at" json:"-"`
	XboxSyncStatus     SyncStatus `gorm:"column:xbox_sync_status;size:20;default:'never_synced'" json:"xbox_sync_status"`
	XboxSyncProgress   int        `gorm:"column:xbox_sync_progress;default:0" json:"xbox_sync_progress"`
	LastXboxSyncAt     *time.Time `gorm:"column:last_xbox_sync_at" json:"last_xbox_sync_at"`

	// Steam
	SteamID           *string    `gorm:"column:steam_id;size:64;uniqueIndex" json:"steam_id"`
	SteamAPIKey       *string    `gorm:"column:steam_api_key;size:128" json:"-"`
	SteamSyncStatus   SyncStatus `gorm:"column:steam_sync_status;size:20;default:'never_synced'" json:"steam_sync_status"`
	SteamSyncProgress int        `gorm:"column:steam_sync_progress;default:0" json:"steam_sync_progress"`
	LastSteamSyncAt   *time.Time `gorm:"column:last_steam_sync_at" json:"last_steam_sync_at"`

	// Set when this profile has been merged away into another one.
	MergedIntoUserID *uuid.UUID `gorm:"type:uuid" json:"-"`
	MergedAt         *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AccountID returns the external account identifier linked for the platform.
func (p *Profile) AccountID(platform Platform) *string {
	switch platform {
	case PlatformPSN:
		return p.PSNAccountID
	case PlatformXbox:
		return p.XboxXUID
	case PlatformSteam:
		return p.SteamID
	}
	return nil
}

// SyncState returns the stored status and progress for the platform.
func (p *Profile) SyncState(platform Platform) (SyncStatus, int) {
	switch platform {
	case PlatformPSN:
		return p.PSNSyncStatus, p.PSNSyncProgress
	case PlatformXbox:
		return p.XboxSyncStatus, p.XboxSyncProgress
	case PlatformSteam:
		return p.SteamSyncStatus, p.SteamSyncProgress
	}
	return "", 0
}

// LastSyncAt returns the last completed sync timestamp for the platform.
func (p *Profile) LastSyncAt(platform Platform) *time.Time {
	switch platform {
	case PlatformPSN:
		return p.LastPSNSyncAt
	case PlatformXbox:
		return p.LastXboxSyncAt
	case PlatformSteam:
		return p.LastSteamSyncAt
	}
	return nil
}
