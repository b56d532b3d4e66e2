package calendar

import (
	"context"
	"fmt"
	"time"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"

	"golang.org/x/oauth2"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultCalendarID     = "primary"
)

// MeetingConflicts is the internal double-booking check.
type MeetingConflicts interface {
	HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error)
}

type AdapterOptions struct {
	RequestTimeout    time.Duration
	DefaultCalendarID string
	// DisableConference drops video-conference requests from created events.
	DisableConference bool
	Now               func() time.Time
}

// Adapter wraps a Provider with credential lifecycle and the failure
// policy: reads fail open, event creation fails closed.
type Adapter struct {
	provider  Provider
	creds     repositories.CredentialRepository
	meetings  MeetingConflicts
	refresher TokenRefresher

	timeout      time.Duration
	calendarID   string
	noConference bool
	now          func() time.Time
}

func NewAdapter(
	provider Provider,
	creds repositories.CredentialRepository,
	meetings MeetingConflicts,
	refresher TokenRefresher,
	opts AdapterOptions,
) *Adapter {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.DefaultCalendarID == "" {
		opts.DefaultCalendarID = DefaultCalendarID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Adapter{
		provider:     provider,
		creds:        creds,
		meetings:     meetings,
		refresher:    refresher,
		timeout:      opts.RequestTimeout,
		calendarID:   opts.DefaultCalendarID,
		noConference: opts.DisableConference,
		now:          opts.Now,
	}
}

// GetCredential returns nil when the user never connected a calendar. An
// expired token is refreshed once; if that fails the stale credential is
// returned and later calls will surface the auth error.
func (a *Adapter) GetCredential(ctx context.Context, userID string) (*models.OAuthCredential, error) {
	cred, err := a.creds.Get(ctx, userID, models.CalendarProviderGoogle)
	if err != nil || cred == nil {
		return nil, err
	}

	if !cred.Expired(a.now()) || cred.RefreshToken == "" || a.refresher == nil {
		return cred, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	fresh, err := a.refresher.Refresh(callCtx, tokenFor(cred))
	if err != nil {
		logger.CtxWarn(ctx, "calendar token refresh failed, using stale credential",
			"user_id", userID, "error", err)
		return cred, nil
	}

	cred.AccessToken = fresh.AccessToken
	cred.ExpiresAt = fresh.Expiry
	if fresh.RefreshToken != "" {
		cred.RefreshToken = fresh.RefreshToken
	}
	if fresh.TokenType != "" {
		cred.TokenType = fresh.TokenType
	}

	if err := a.creds.Store(ctx, cred); err != nil {
		logger.CtxWarn(ctx, "failed to persist refreshed calendar token", "user_id", userID, "error", err)
	}
	return cred, nil
}

// GetBusyTimes never fails: provider errors and timeouts yield no busy intervals.
func (a *Adapter) GetBusyTimes(ctx context.Context, userID string, cred *models.OAuthCredential, from, to time.Time) []BusyInterval {
	if cred == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	busy, err := a.provider.FreeBusy(callCtx, tokenFor(cred), a.calendarFor(cred), from, to)
	if err != nil {
		logger.CtxWarn(ctx, "free/busy lookup failed, assuming free",
			"user_id", userID, "error", err)
		return nil
	}
	return busy
}

// IsTimeAvailable is false when the external calendar or a scheduled meeting
// in our own store overlaps [start, end). Lookup failures count as free.
func (a *Adapter) IsTimeAvailable(ctx context.Context, userID string, cred *models.OAuthCredential, start, end time.Time) bool {
	for _, b := range a.GetBusyTimes(ctx, userID, cred, start, end) {
		if b.Overlaps(start, end) {
			return false
		}
	}

	if a.meetings == nil {
		return true
	}
	taken, err := a.meetings.HasOverlapping(ctx, userID, start, end)
	if err != nil {
		logger.CtxWarn(ctx, "meeting conflict query failed, assuming free",
			"user_id", userID, "error", err)
		return true
	}
	return !taken
}

// CreateEvent propagates every error to the caller.
func (a *Adapter) CreateEvent(ctx context.Context, userID string, cred *models.OAuthCredential, event EventInput) (*CreatedEvent, error) {
	if cred == nil {
		return nil, fmt.Errorf("user %s has no calendar connected", userID)
	}

	if a.noConference {
		event.ConferenceRequestID = ""
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	created, err := a.provider.InsertEvent(callCtx, tokenFor(cred), a.calendarFor(cred), event)
	if err != nil {
		return nil, fmt.Errorf("create calendar event for %s: %w", userID, err)
	}
	return created, nil
}

// Disconnect forgets the user's calendar grant.
func (a *Adapter) Disconnect(ctx context.Context, userID string) error {
	return a.creds.Delete(ctx, userID, models.CalendarProviderGoogle)
}

func (a *Adapter) calendarFor(cred *models.OAuthCredential) string {
	if cred.CalendarID != "" {
		return cred.CalendarID
	}
	return a.calendarID
}

func tokenFor(cred *models.OAuthCredential) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.ExpiresAt,
	}
}
