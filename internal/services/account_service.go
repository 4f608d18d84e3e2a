package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"gorm.io/gorm"
)

// AccountService links platform identities to profiles and removes accounts.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// LinkResult reports the outcome of a link attempt. When the platform
// identity already belongs to another profile nothing is written and the
// conflicting user id is returned so the client can offer a merge.
type LinkResult struct {
	RequiresMerge  bool
	ExistingUserID uuid.UUID
}

// Link stores platform credentials for the caller, unless the platform
// account id is already registered under a different profile.
func (s *AccountService) Link(ctx context.Context, userID uuid.UUID, platform models.Platform, creds *dto.PlatformCredentials) (*LinkResult, error) {
	if err := validateCredentials(platform, creds); err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	accountID := credentialAccountID(platform, creds)
	var conflicting models.Profile
	err := s.db.Select("id").
		Where(platform.AccountIDColumn()+" = ? AND id <> ?", accountID, userID).
		First(&conflicting).Error
	if err == nil {
		slog.Info("platform identity collision detected",
			"user_id", userID.String(), "platform", platform.String(),
			"existing_user_id", conflicting.ID.String(), "action", "link")
		return &LinkResult{RequiresMerge: true, ExistingUserID: conflicting.ID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing platform account: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyCredentials(tx, userID, platform, creds); err != nil {
			return err
		}
		return upsertTrophySnapshot(tx, userID, creds)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	slog.Info("platform account linked", "user_id", userID.String(), "platform", platform.String(), "action", "link")
	return &LinkResult{}, nil
}

// DeleteAccount removes the profile and every dependent row in one transaction.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ?", userID).Delete(&models.UserGame{})
		tx.Where("user_id = ?", userID).Delete(&models.UserAchievement{})
		tx.Where("user_id = ?", userID).Delete(&models.VirtualCompletion{})
		tx.Where("user_id = ?", userID).Delete(&models.SyncLog{})
		tx.Where("user_id = ?", userID).Delete(&models.TrophyProfile{})
		return tx.Delete(&profile).Error
	})
}
