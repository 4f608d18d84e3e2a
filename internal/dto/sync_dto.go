package dto

import "time"

// PlatformSyncState is the per-platform projection of profile sync fields.
type PlatformSyncState struct {
	Status     string     `json:"status"`
	Progress   int        `json:"progress"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// SyncLogSummary is the latest sync attempt for one platform.
type SyncLogSummary struct {
	ID          string     `json:"id"`
	Platform    string     `json:"platform"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// SyncStatusResponse is the read-status projection across all platforms.
type SyncStatusResponse struct {
	Platforms  map[string]PlatformSyncState `json:"platforms"`
	RecentLogs []SyncLogSummary             `json:"recentLogs"`
}

// ForceStopResponse reports what the administrative force-stop touched.
type ForceStopResponse struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	ProfilesStopped map[string]int `json:"profilesStopped"`
	LogsCancelled   int            `json:"logsCancelled"`
}
