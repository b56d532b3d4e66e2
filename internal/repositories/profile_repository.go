package repositories

import (
	"context"
	"errors"

	"dealflow_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvestorProfileNotFound = errors.New("investor profile not found")
	ErrCompanyProfileNotFound  = errors.New("company profile not found")
)

type ProfileRepository interface {
	FindInvestorProfileByUserID(ctx context.Context, userID string) (*models.InvestorProfile, error)
	FindCompanyProfileByUserID(ctx context.Context, userID string) (*models.CompanyProfile, error)
	// ListCompanyProfiles returns profiles of active company users, newest first.
	ListCompanyProfiles(ctx context.Context) ([]models.CompanyProfile, error)
	SaveInvestorProfile(ctx context.Context, profile *models.InvestorProfile) error
	SaveCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error
}

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) FindInvestorProfileByUserID(ctx context.Context, userID string) (*models.InvestorProfile, error) {
	var profile models.InvestorProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestorProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindCompanyProfileByUserID(ctx context.Context, userID string) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) ListCompanyProfiles(ctx context.Context) ([]models.CompanyProfile, error) {
	var profiles []models.CompanyProfile
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = company_profiles.user_id").
		Where("users.status = ?", models.UserStatusActive).
		Order("company_profiles.created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

// SaveInvestorProfile creates or updates the profile keyed by its user id.
func (r *ProfileRepositoryImpl) SaveInvestorProfile(ctx context.Context, profile *models.InvestorProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *ProfileRepositoryImpl) SaveCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
