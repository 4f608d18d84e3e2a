package models

import "fmt"

// Platform identifies one of the supported gaming networks.
type Platform string

const (
	PlatformPSN   Platform = "psn"
	PlatformXbox  Platform = "xbox"
	PlatformSteam Platform = "steam"
)

// AllPlatforms is the closed set of supported platforms.
var AllPlatforms = []Platform{PlatformPSN, PlatformXbox, PlatformSteam}

// ParsePlatform validates a platform path/query value.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformPSN, PlatformXbox, PlatformSteam:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Platform) String() string { return string(p) }

// StatusColumn returns the profiles column holding this platform's sync status.
func (p Platform) StatusColumn() string {
	return string(p) + "_sync_status"
}

// ProgressColumn returns the profiles column holding this platform's sync progress.
func (p Platform) ProgressColumn() string {
	return string(p) + "_sync_progress"
}

// AccountIDColumn returns the profiles column holding this platform's
// external account identifier (the one guarded by a unique index).
func (p Platform) AccountIDColumn() string {
	switch p {
	case PlatformPSN:
		return "psn_account_id"
	case PlatformXbox:
		return "xbox_xuid"
	case PlatformSteam:
		return "steam_id"
	}
	return ""
}

// LastSyncColumn returns the profiles column holding this platform's last
// completed sync timestamp.
func (p Platform) LastSyncColumn() string {
	return "last_" + string(p) + "_sync_at"
}
