package repositories

import (
	"context"
	"errors"

	"dealflow_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetAutoArrangeOptIn(ctx context.Context, userID string, enabled bool) error
	// ListOptedInUsers returns active users with the given opt-in flag, oldest first.
	ListOptedInUsers(ctx context.Context, optIn bool) ([]models.OptedInUser, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepositoryImpl) SetAutoArrangeOptIn(ctx context.Context, userID string, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("auto_arrange_opt_in", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) ListOptedInUsers(ctx context.Context, optIn bool) ([]models.OptedInUser, error) {
	var users []models.OptedInUser
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("id", "email", "name", "role").
		Where("auto_arrange_opt_in = ? AND status = ?", optIn, models.UserStatusActive).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}
