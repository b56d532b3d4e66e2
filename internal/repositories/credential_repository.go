package repositories

import (
	"context"
	"errors"
	"fmt"

	"dealflow_backend/internal/models"
	"dealflow_backend/internal/secrets"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository stores one OAuth grant per user and provider.
// Get returns (nil, nil) when the user never connected.
type CredentialRepository interface {
	Get(ctx context.Context, userID, provider string) (*models.OAuthCredential, error)
	Store(ctx context.Context, cred *models.OAuthCredential) error
	Delete(ctx context.Context, userID, provider string) error
}

type CredentialRepositoryImpl struct {
	db  *gorm.DB
	box *secrets.Box
}

func NewCredentialRepository(db *gorm.DB, box *secrets.Box) CredentialRepository {
	if box == nil {
		box, _ = secrets.NewBox(nil)
	}
	return &CredentialRepositoryImpl{db: db, box: box}
}

func (r *CredentialRepositoryImpl) Get(ctx context.Context, userID, provider string) (*models.OAuthCredential, error) {
	var cred models.OAuthCredential
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if cred.AccessToken, err = r.box.Open(cred.AccessToken); err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	if cred.RefreshToken, err = r.box.Open(cred.RefreshToken); err != nil {
		return nil, fmt.Errorf("open refresh token: %w", err)
	}
	return &cred, nil
}

// Store upserts on (user_id, provider). cred keeps its plaintext tokens.
func (r *CredentialRepositoryImpl) Store(ctx context.Context, cred *models.OAuthCredential) error {
	if cred.Provider == "" {
		cred.Provider = models.CalendarProviderGoogle
	}
	if cred.CalendarID == "" {
		cred.CalendarID = "primary"
	}

	row := *cred
	row.ID = ""
	var err error
	if row.AccessToken, err = r.box.Seal(cred.AccessToken); err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	if row.RefreshToken, err = r.box.Seal(cred.RefreshToken); err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "token_type", "expires_at",
			"scope", "calendar_id", "email", "updated_at",
		}),
	}).Create(&row).Error
}

func (r *CredentialRepositoryImpl) Delete(ctx context.Context, userID, provider string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.OAuthCredential{}).Error
}
