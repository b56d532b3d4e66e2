package services

import (
	"context"
	"errors"

	"dealflow_backend/internal/calendar"
	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/pkg/apperrors"
)

// CalendarConnector runs the OAuth consent flow. *calendar.OAuthFlow satisfies it.
type CalendarConnector interface {
	AuthCodeURL(userID string) (string, error)
	HandleCallback(ctx context.Context, state, code string) (string, error)
}

// CalendarAccount reads and removes stored credentials. *calendar.Adapter satisfies it.
type CalendarAccount interface {
	GetCredential(ctx context.Context, userID string) (*models.OAuthCredential, error)
	Disconnect(ctx context.Context, userID string) error
}

type CalendarService interface {
	ConnectURL(ctx context.Context, userID string) (string, error)
	CompleteConnection(ctx context.Context, state, code string) (string, error)
	Status(ctx context.Context, userID string) (*dto.CalendarStatus, error)
	Disconnect(ctx context.Context, userID string) error
}

type calendarService struct {
	connector CalendarConnector
	accounts  CalendarAccount
}

// NewCalendarService accepts a nil connector when Google OAuth is not configured;
// connect calls then fail with ErrCalendarNotConfigured.
func NewCalendarService(connector CalendarConnector, accounts CalendarAccount) CalendarService {
	return &calendarService{connector: connector, accounts: accounts}
}

func (s *calendarService) ConnectURL(ctx context.Context, userID string) (string, error) {
	if s.connector == nil {
		return "", apperrors.ErrCalendarNotConfigured
	}
	url, err := s.connector.AuthCodeURL(userID)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func (s *calendarService) CompleteConnection(ctx context.Context, state, code string) (string, error) {
	if s.connector == nil {
		return "", apperrors.ErrCalendarNotConfigured
	}
	userID, err := s.connector.HandleCallback(ctx, state, code)
	switch {
	case err == nil:
		logger.CtxInfo(ctx, "calendar connected", "user_id", userID)
		return userID, nil
	case errors.Is(err, calendar.ErrInvalidState), errors.Is(err, calendar.ErrNoCode):
		return "", apperrors.ErrInvalidOAuthState.WithError(err)
	default:
		return "", apperrors.ErrCalendarUnavailable.WithError(err)
	}
}

func (s *calendarService) Status(ctx context.Context, userID string) (*dto.CalendarStatus, error) {
	cred, err := s.accounts.GetCredential(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if cred == nil {
		return &dto.CalendarStatus{Provider: models.CalendarProviderGoogle}, nil
	}
	return &dto.CalendarStatus{
		Connected:  true,
		Provider:   cred.Provider,
		CalendarID: cred.CalendarID,
		Email:      cred.Email,
		Scope:      cred.Scope,
	}, nil
}

func (s *calendarService) Disconnect(ctx context.Context, userID string) error {
	cred, err := s.accounts.GetCredential(ctx, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if cred == nil {
		return apperrors.ErrCalendarNotConnected
	}
	if err := s.accounts.Disconnect(ctx, userID); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "calendar disconnected", "user_id", userID)
	return nil
}
