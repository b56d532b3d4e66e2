package calendar

import (
	"context"
	"errors"
	"fmt"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrInvalidState = errors.New("invalid oauth state")
	ErrNoCode       = errors.New("authorization code missing")
)

// Scopes needed for free/busy reads and event writes.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.readonly",
}

func NewOAuthConfig(clientID, clientSecret, redirectURL string, scopes []string) *oauth2.Config {
	if len(scopes) == 0 {
		scopes = Scopes
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// OAuthFlow runs the authorization-code grant and stores the result.
type OAuthFlow struct {
	config *oauth2.Config
	creds  repositories.CredentialRepository
}

func NewOAuthFlow(config *oauth2.Config, creds repositories.CredentialRepository) *OAuthFlow {
	return &OAuthFlow{config: config, creds: creds}
}

// AuthCodeURL builds the consent URL. The state is a signed, short-lived
// token naming the user so the public callback can attribute the grant.
func (f *OAuthFlow) AuthCodeURL(userID string) (string, error) {
	state, err := auth.GenerateStateToken(userID)
	if err != nil {
		return "", err
	}
	return f.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// HandleCallback exchanges the code and persists the credential. It returns
// the user the grant belongs to.
func (f *OAuthFlow) HandleCallback(ctx context.Context, state, code string) (string, error) {
	userID, err := auth.ParseStateToken(state)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if code == "" {
		return "", ErrNoCode
	}

	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}

	cred := &models.OAuthCredential{
		UserID:       userID,
		Provider:     models.CalendarProviderGoogle,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
		CalendarID:   DefaultCalendarID,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		cred.Scope = scope
	}

	if cred.RefreshToken == "" {
		// Google omits the refresh token on re-consent; keep the stored one.
		if existing, err := f.creds.Get(ctx, userID, models.CalendarProviderGoogle); err == nil && existing != nil {
			cred.RefreshToken = existing.RefreshToken
		}
	}

	if err := f.creds.Store(ctx, cred); err != nil {
		return "", fmt.Errorf("store calendar credential: %w", err)
	}
	return userID, nil
}
