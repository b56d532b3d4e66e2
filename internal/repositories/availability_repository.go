package repositories

import (
	"context"

	"dealflow_backend/internal/models"

	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	// ReplaceForUser swaps the user's whole weekly set in one transaction.
	ReplaceForUser(ctx context.Context, userID string, windows []models.AvailabilityWindow) error
	// ListByUser returns windows ordered by day then start time.
	ListByUser(ctx context.Context, userID string) ([]models.AvailabilityWindow, error)
}

type AvailabilityRepositoryImpl struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &AvailabilityRepositoryImpl{db: db}
}

func (r *AvailabilityRepositoryImpl) ReplaceForUser(ctx context.Context, userID string, windows []models.AvailabilityWindow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return err
		}
		if len(windows) == 0 {
			return nil
		}
		for i := range windows {
			windows[i].ID = ""
			windows[i].UserID = userID
		}
		return tx.Create(&windows).Error
	})
}

func (r *AvailabilityRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error
	return windows, err
}
