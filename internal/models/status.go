package models

// SyncStatus is the per-(user, platform) sync state stored on the profile.
//
// Transitions: never_synced -> syncing -> {completed, failed, cancelling};
// cancelling -> {stopped, completed}; any -> stopped via force-stop.
type SyncStatus string

const (
	SyncNeverSynced SyncStatus = "never_synced"
	SyncSyncing     SyncStatus = "syncing"
	SyncCancelling  SyncStatus = "cancelling"
	SyncStopped     SyncStatus = "stopped"
	SyncCompleted   SyncStatus = "completed"
	SyncFailed      SyncStatus = "failed"
)

// Valid reports whether s is one of the known sync statuses.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncNeverSynced, SyncSyncing, SyncCancelling, SyncStopped, SyncCompleted, SyncFailed:
		return true
	}
	return false
}

// Active reports whether a sync is in flight (or winding down) for this status.
func (s SyncStatus) Active() bool {
	return s == SyncSyncing || s == SyncCancelling
}

// LogStatus is the lifecycle state of a single sync attempt row.
type LogStatus string

const (
	LogPending   LogStatus = "pending"
	LogSyncing   LogStatus = "syncing"
	LogCancelled LogStatus = "cancelled"
	LogCompleted LogStatus = "completed"
	LogFailed    LogStatus = "failed"
)

// Valid reports whether s is one of the known log statuses.
func (s LogStatus) Valid() bool {
	switch s {
	case LogPending, LogSyncing, LogCancelled, LogCompleted, LogFailed:
		return true
	}
	return false
}

// Terminal reports whether the sync attempt has finished (no worker will
// touch the row again).
func (s LogStatus) Terminal() bool {
	return s == LogCancelled || s == LogCompleted || s == LogFailed
}
