package services

import (
	"context"
	"errors"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/pkg/apperrors"
)

type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// SetAutoArrangeOptIn toggles the pre-consent that lets the scheduler book on the user's behalf.
	SetAutoArrangeOptIn(ctx context.Context, userID string, enabled bool) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *userService) SetAutoArrangeOptIn(ctx context.Context, userID string, enabled bool) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.UserRoleInvestor && user.Role != models.UserRoleCompany {
		return nil, apperrors.ErrInvalidUserRole
	}

	if err := s.userRepo.SetAutoArrangeOptIn(ctx, userID, enabled); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.AutoArrangeOptIn = enabled

	logger.CtxInfo(ctx, "auto-arrange preference changed", "user_id", userID, "enabled", enabled)
	return user, nil
}
