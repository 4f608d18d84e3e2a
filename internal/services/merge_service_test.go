package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Profile{},
		&models.SyncLog{},
		&models.TrophyProfile{},
		&models.UserGame{},
		&models.UserAchievement{},
		&models.VirtualCompletion{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestProfile(t *testing.T, db *gorm.DB, mutate func(p *models.Profile)) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		ID:              uuid.New(),
		PSNSyncStatus:   models.SyncNeverSynced,
		XboxSyncStatus:  models.SyncNeverSynced,
		SteamSyncStatus: models.SyncNeverSynced,
	}
	if mutate != nil {
		mutate(profile)
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

func createTestGame(t *testing.T, db *gorm.DB, userID, gameID uuid.UUID, earned int) *models.UserGame {
	t.Helper()

	game := &models.UserGame{
		ID:             uuid.New(),
		UserID:         userID,
		GameTitleID:    gameID,
		Platform:       models.PlatformPSN,
		EarnedTrophies: earned,
	}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("failed to create test game: %v", err)
	}
	return game
}

func strPtr(s string) *string { return &s }

func TestMergeAccounts_MovesOwnedRecords(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, nil)
	target := createTestProfile(t, db, nil)

	gameID := uuid.New()
	achievementID := uuid.New()
	createTestGame(t, db, source.ID, gameID, 10)
	if err := db.Create(&models.UserAchievement{
		ID: uuid.New(), UserID: source.ID, AchievementID: achievementID,
	}).Error; err != nil {
		t.Fatalf("failed to create achievement: %v", err)
	}

	if err := svc.MergeAccounts(context.Background(), source.ID, target.ID); err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	var count int64
	db.Model(&models.UserGame{}).Where("user_id = ?", source.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no games left for source, got %d", count)
	}
	db.Model(&models.UserGame{}).Where("user_id = ? AND game_title_id = ?", target.ID, gameID).Count(&count)
	if count != 1 {
		t.Errorf("expected game moved to target, got %d rows", count)
	}
	db.Model(&models.UserAchievement{}).Where("user_id = ?", target.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected achievement moved to target, got %d rows", count)
	}

	// Source profile is gone from normal reads.
	var gone models.Profile
	if err := db.First(&gone, "id = ?", source.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected source profile soft-deleted, got err=%v", err)
	}

	// But the audit trail survives.
	var retired models.Profile
	if err := db.Unscoped().First(&retired, "id = ?", source.ID).Error; err != nil {
		t.Fatalf("failed to load retired profile: %v", err)
	}
	if retired.MergedIntoUserID == nil || *retired.MergedIntoUserID != target.ID {
		t.Errorf("expected merged_into_user_id = %s, got %v", target.ID, retired.MergedIntoUserID)
	}
	if retired.MergedAt == nil {
		t.Error("expected merged_at to be set")
	}
}

func TestMergeAccounts_SkipsCollidingGames(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, nil)
	target := createTestProfile(t, db, nil)

	sharedGame := uuid.New()
	onlySourceGame := uuid.New()
	createTestGame(t, db, source.ID, sharedGame, 5)
	targetCopy := createTestGame(t, db, target.ID, sharedGame, 20)
	createTestGame(t, db, source.ID, onlySourceGame, 3)

	if err := svc.MergeAccounts(context.Background(), source.ID, target.ID); err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	var rows []models.UserGame
	if err := db.Where("user_id = ?", target.ID).Find(&rows).Error; err != nil {
		t.Fatalf("failed to load target games: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected target to own 2 games, got %d", len(rows))
	}

	// The target's copy of the shared game wins; the source's copy is dropped.
	var shared models.UserGame
	if err := db.First(&shared, "user_id = ? AND game_title_id = ?", target.ID, sharedGame).Error; err != nil {
		t.Fatalf("failed to load shared game: %v", err)
	}
	if shared.ID != targetCopy.ID || shared.EarnedTrophies != 20 {
		t.Errorf("expected target's copy (id=%s, earned=20) to survive, got id=%s earned=%d",
			targetCopy.ID, shared.ID, shared.EarnedTrophies)
	}

	var count int64
	db.Model(&models.UserGame{}).Where("user_id = ?", source.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected source's games removed, got %d", count)
	}
}

func TestMergeAccounts_SameIDFails(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	profile := createTestProfile(t, db, func(p *models.Profile) {
		p.PSNSyncStatus = models.SyncSyncing
	})
	createTestGame(t, db, profile.ID, uuid.New(), 7)

	err := svc.MergeAccounts(context.Background(), profile.ID, profile.ID)
	if !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}

	// Nothing mutated.
	var reloaded models.Profile
	if err := db.First(&reloaded, "id = ?", profile.ID).Error; err != nil {
		t.Fatalf("profile should still exist: %v", err)
	}
	var count int64
	db.Model(&models.UserGame{}).Where("user_id = ?", profile.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected game untouched, got %d rows", count)
	}
}

func TestMergeAccounts_MissingProfiles(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	existing := createTestProfile(t, db, nil)

	if err := svc.MergeAccounts(context.Background(), uuid.New(), existing.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound for missing source, got %v", err)
	}
	if err := svc.MergeAccounts(context.Background(), existing.ID, uuid.New()); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound for missing target, got %v", err)
	}
}

func TestMergeAccounts_TrophyProfileTakesBetterValues(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, nil)
	target := createTestProfile(t, db, nil)

	if err := db.Create(&models.TrophyProfile{
		UserID: source.ID, TrophyLevel: 420, TrophyTier: 7, PlatinumCount: 31,
	}).Error; err != nil {
		t.Fatalf("failed to create source trophy profile: %v", err)
	}
	if err := db.Create(&models.TrophyProfile{
		UserID: target.ID, TrophyLevel: 150, TrophyTier: 9, PlatinumCount: 4,
	}).Error; err != nil {
		t.Fatalf("failed to create target trophy profile: %v", err)
	}

	if err := svc.MergeAccounts(context.Background(), source.ID, target.ID); err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	var merged models.TrophyProfile
	if err := db.First(&merged, "user_id = ?", target.ID).Error; err != nil {
		t.Fatalf("failed to load merged trophy profile: %v", err)
	}
	if merged.TrophyLevel != 420 || merged.TrophyTier != 9 || merged.PlatinumCount != 31 {
		t.Errorf("expected level=420 tier=9 platinum=31, got level=%d tier=%d platinum=%d",
			merged.TrophyLevel, merged.TrophyTier, merged.PlatinumCount)
	}

	var count int64
	db.Model(&models.TrophyProfile{}).Where("user_id = ?", source.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected source trophy profile removed, got %d rows", count)
	}
}

func TestMergeAccounts_ActiveSyncLogConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, nil)
	target := createTestProfile(t, db, nil)

	for _, userID := range []uuid.UUID{source.ID, target.ID} {
		if err := db.Create(&models.SyncLog{
			ID: uuid.New(), UserID: userID, Platform: models.PlatformPSN, Status: models.LogPending,
		}).Error; err != nil {
			t.Fatalf("failed to create sync log: %v", err)
		}
	}

	if err := svc.MergeAccounts(context.Background(), source.ID, target.ID); err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	var active int64
	db.Model(&models.SyncLog{}).
		Where("user_id = ? AND platform = ? AND status IN ?", target.ID, models.PlatformPSN, activeLogStatuses).
		Count(&active)
	if active != 1 {
		t.Errorf("expected exactly one active psn log for target, got %d", active)
	}

	var cancelled models.SyncLog
	if err := db.First(&cancelled, "user_id = ? AND status = ?", target.ID, models.LogCancelled).Error; err != nil {
		t.Fatalf("expected the source's log cancelled and repointed: %v", err)
	}
	if cancelled.CompletedAt == nil {
		t.Error("expected cancelled log to carry completed_at")
	}

	var orphaned int64
	db.Model(&models.SyncLog{}).Where("user_id = ?", source.ID).Count(&orphaned)
	if orphaned != 0 {
		t.Errorf("expected no logs left on source, got %d", orphaned)
	}
}

func TestConfirmMerge_AppliesCredentialsAndSnapshot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, func(p *models.Profile) {
		p.PSNAccountID = strPtr("123456789")
	})
	target := createTestProfile(t, db, nil)
	createTestGame(t, db, source.ID, uuid.New(), 12)

	req := &dto.ConfirmMergeRequest{
		ExistingUserID: source.ID.String(),
		Credentials: dto.PlatformCredentials{
			AccountID:   "123456789",
			OnlineID:    "trophy_hunter",
			NpssoToken:  "npsso-fresh",
			AccessToken: "access-fresh",
			TrophyLevel: 300,
			TrophyTier:  5,
		},
	}
	if err := svc.ConfirmMerge(context.Background(), target.ID, models.PlatformPSN, req); err != nil {
		t.Fatalf("ConfirmMerge failed: %v", err)
	}

	// The fresh credentials end up on the surviving profile, with the
	// platform's sync state reset for a clean first sync.
	var merged models.Profile
	if err := db.First(&merged, "id = ?", target.ID).Error; err != nil {
		t.Fatalf("failed to load target: %v", err)
	}
	if merged.PSNAccountID == nil || *merged.PSNAccountID != "123456789" {
		t.Errorf("expected psn account id applied, got %v", merged.PSNAccountID)
	}
	if merged.PSNNpssoToken == nil || *merged.PSNNpssoToken != "npsso-fresh" {
		t.Errorf("expected fresh npsso token applied, got %v", merged.PSNNpssoToken)
	}
	if merged.PSNSyncStatus != models.SyncNeverSynced || merged.PSNSyncProgress != 0 {
		t.Errorf("expected psn state reset to never_synced/0, got %s/%d",
			merged.PSNSyncStatus, merged.PSNSyncProgress)
	}

	var snapshot models.TrophyProfile
	if err := db.First(&snapshot, "user_id = ?", target.ID).Error; err != nil {
		t.Fatalf("expected trophy snapshot upserted: %v", err)
	}
	if snapshot.TrophyLevel != 300 || snapshot.TrophyTier != 5 {
		t.Errorf("expected trophy level=300 tier=5, got level=%d tier=%d",
			snapshot.TrophyLevel, snapshot.TrophyTier)
	}

	var count int64
	db.Model(&models.UserGame{}).Where("user_id = ?", target.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected source's game moved to target, got %d rows", count)
	}

	// The source is retired; confirming the same merge again finds no profile.
	if err := svc.ConfirmMerge(context.Background(), target.ID, models.PlatformPSN, req); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound on re-merge of retired profile, got %v", err)
	}
}

func TestConfirmMerge_KeepsBetterTrophyValues(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, nil)
	target := createTestProfile(t, db, nil)
	if err := db.Create(&models.TrophyProfile{
		UserID: target.ID, TrophyLevel: 500, TrophyTier: 2,
	}).Error; err != nil {
		t.Fatalf("failed to create trophy profile: %v", err)
	}

	req := &dto.ConfirmMergeRequest{
		ExistingUserID: source.ID.String(),
		Credentials: dto.PlatformCredentials{
			AccountID:   "987654321",
			OnlineID:    "completionist",
			NpssoToken:  "npsso",
			TrophyLevel: 120,
			TrophyTier:  6,
		},
	}
	if err := svc.ConfirmMerge(context.Background(), target.ID, models.PlatformPSN, req); err != nil {
		t.Fatalf("ConfirmMerge failed: %v", err)
	}

	var snapshot models.TrophyProfile
	if err := db.First(&snapshot, "user_id = ?", target.ID).Error; err != nil {
		t.Fatalf("failed to load trophy profile: %v", err)
	}
	if snapshot.TrophyLevel != 500 || snapshot.TrophyTier != 6 {
		t.Errorf("expected level=500 tier=6 after snapshot merge, got level=%d tier=%d",
			snapshot.TrophyLevel, snapshot.TrophyTier)
	}
}

func TestConfirmMerge_RejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	source := createTestProfile(t, db, nil)
	target := createTestProfile(t, db, nil)

	err := svc.ConfirmMerge(context.Background(), target.ID, models.PlatformPSN, &dto.ConfirmMergeRequest{
		ExistingUserID: "not-a-uuid",
		Credentials:    dto.PlatformCredentials{AccountID: "1", OnlineID: "x", NpssoToken: "t"},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid existingUserId") {
		t.Errorf("expected invalid existingUserId error, got %v", err)
	}

	err = svc.ConfirmMerge(context.Background(), target.ID, models.PlatformPSN, &dto.ConfirmMergeRequest{
		ExistingUserID: source.ID.String(),
	})
	if !errors.Is(err, ErrMissingPSNCredentials) {
		t.Errorf("expected ErrMissingPSNCredentials, got %v", err)
	}

	// Neither failure touched the source profile.
	var count int64
	db.Model(&models.Profile{}).Where("id = ?", source.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected source profile untouched, got %d rows", count)
	}
}

func TestMergeAccounts_TransfersPlatformCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMergeService(db)

	lastSync := time.Now().UTC().Add(-time.Hour)
	source := createTestProfile(t, db, func(p *models.Profile) {
		p.PSNAccountID = strPtr("123456789")
		p.PSNOnlineID = strPtr("trophy_hunter")
		p.PSNAccessToken = strPtr("psn-access")
		p.PSNSyncStatus = models.SyncCompleted
		p.LastPSNSyncAt = &lastSync
		p.SteamID = strPtr("7656119")
	})
	target := createTestProfile(t, db, nil)

	if err := svc.MergeAccounts(context.Background(), source.ID, target.ID); err != nil {
		t.Fatalf("MergeAccounts failed: %v", err)
	}

	var merged models.Profile
	if err := db.First(&merged, "id = ?", target.ID).Error; err != nil {
		t.Fatalf("failed to load target: %v", err)
	}
	if merged.PSNAccountID == nil || *merged.PSNAccountID != "123456789" {
		t.Errorf("expected psn account id transferred, got %v", merged.PSNAccountID)
	}
	if merged.PSNOnlineID == nil || *merged.PSNOnlineID != "trophy_hunter" {
		t.Errorf("expected psn online id transferred, got %v", merged.PSNOnlineID)
	}
	if merged.PSNSyncStatus != models.SyncCompleted {
		t.Errorf("expected psn sync status transferred, got %s", merged.PSNSyncStatus)
	}
	if merged.SteamID == nil || *merged.SteamID != "7656119" {
		t.Errorf("expected steam id transferred, got %v", merged.SteamID)
	}

	var retired models.Profile
	if err := db.Unscoped().First(&retired, "id = ?", source.ID).Error; err != nil {
		t.Fatalf("failed to load retired profile: %v", err)
	}
	if retired.PSNAccountID != nil || retired.SteamID != nil || retired.PSNAccessToken != nil {
		t.Error("expected platform identities and tokens cleared on retired profile")
	}
}
