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
)

var ErrProfileNotFound = errors.New("profile not found")

// StopForwarder signals the remote sync worker to cease at its next safe
// checkpoint.
type StopForwarder interface {
	StopSync(ctx context.Context, platform models.Platform, userID uuid.UUID) error
}

// SyncService reconciles per-(user, platform) sync status. It records stop
// intent and forwards it to the worker; the worker owns the actual halt and
// persists final progress.
type SyncService struct {
	db     *gorm.DB
	worker StopForwarder
}

func NewSyncService(db *gorm.DB, worker StopForwarder) *SyncService {
	return &SyncService{db: db, worker: worker}
}

// RequestStop forwards cancellation intent to the worker, then settles the
// profile's status to stopped. Ordering is forward-then-write everywhere: if
// the forward fails the status column is untouched, so the user-visible
// state never claims a stop the worker never heard about.
//
// Idempotent: with no sync in flight the conditional update matches nothing
// and the call still succeeds.
func (s *SyncService) RequestStop(ctx context.Context, userID uuid.UUID, platform models.Platform) error {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.worker.StopSync(ctx, platform, userID); err != nil {
		slog.Error("stop forward failed",
			"user_id", userID.String(), "platform", platform.String(), "action", "request_stop", "error", err)
		return err
	}

	statusCol := platform.StatusColumn()
	result := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND "+statusCol+" IN ?", userID, []models.SyncStatus{models.SyncSyncing, models.SyncCancelling}).
		Update(statusCol, models.SyncStopped)
	if result.Error != nil {
		return fmt.Errorf("failed to record stop: %w", result.Error)
	}

	slog.Info("sync stop requested",
		"user_id", userID.String(), "platform", platform.String(), "was_running", result.RowsAffected > 0)
	return nil
}

// ForceStopAll is the administrative blunt instrument: every profile with a
// platform in syncing or cancelling is forced to stopped with progress 0, and
// every non-terminal sync log is cancelled. It bypasses the worker entirely,
// so it must stay behind the admin gate. Idempotent.
func (s *SyncService) ForceStopAll(ctx context.Context) (*dto.ForceStopResponse, error) {
	stopped := make(map[string]int, len(models.AllPlatforms))
	var logsCancelled int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, platform := range models.AllPlatforms {
			statusCol := platform.StatusColumn()
			result := tx.Model(&models.Profile{}).
				Where(statusCol+" IN ?", []models.SyncStatus{models.SyncSyncing, models.SyncCancelling}).
				Updates(map[string]interface{}{
					statusCol:                 models.SyncStopped,
					platform.ProgressColumn(): 0,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to force-stop %s profiles: %w", platform, result.Error)
			}
			stopped[platform.String()] = int(result.RowsAffected)
		}

		now := time.Now().UTC()
		result := tx.Model(&models.SyncLog{}).
			Where("status IN ?", []models.LogStatus{models.LogPending, models.LogSyncing}).
			Updates(map[string]interface{}{
				"status":       models.LogCancelled,
				"completed_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel sync logs: %w", result.Error)
		}
		logsCancelled = result.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("force-stop completed",
		"action", "force_stop_all",
		"psn", stopped[models.PlatformPSN.String()],
		"xbox", stopped[models.PlatformXbox.String()],
		"steam", stopped[models.PlatformSteam.String()],
		"logs_cancelled", logsCancelled)

	return &dto.ForceStopResponse{
		Success:         true,
		Message:         "All running syncs have been force-stopped",
		ProfilesStopped: stopped,
		LogsCancelled:   int(logsCancelled),
	}, nil
}

// Status projects the per-platform sync state plus the latest log per platform.
func (s *SyncService) Status(ctx context.Context, userID uuid.UUID) (*dto.SyncStatusResponse, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	resp := &dto.SyncStatusResponse{
		Platforms:  make(map[string]dto.PlatformSyncState, len(models.AllPlatforms)),
		RecentLogs: make([]dto.SyncLogSummary, 0, len(models.AllPlatforms)),
	}

	for _, platform := range models.AllPlatforms {
		status, progress := profile.SyncState(platform)
		resp.Platforms[platform.String()] = dto.PlatformSyncState{
			Status:     string(status),
			Progress:   progress,
			LastSyncAt: profile.LastSyncAt(platform),
		}

		var log models.SyncLog
		err := s.db.WithContext(ctx).Where("user_id = ? AND platform = ?", userID, platform).
			Order("created_at DESC").First(&log).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load sync logs: %w", err)
		}
		resp.RecentLogs = append(resp.RecentLogs, dto.SyncLogSummary{
			ID:          log.ID.String(),
			Platform:    log.Platform.String(),
			Status:      string(log.Status),
			StartedAt:   log.StartedAt,
			CompletedAt: log.CompletedAt,
		})
	}

	return resp, nil
}
