// Package calendar talks to users' external calendars: free/busy lookups,
// conflict checks and event creation, plus the OAuth grant that enables them.
package calendar

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the interval intersects [start, end).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
	Attendees   []string
	// RequestID makes the conference request idempotent; empty skips the video link.
	ConferenceRequestID string
}

type CreatedEvent struct {
	ID             string `json:"id"`
	HTMLLink       string `json:"html_link"`
	ConferenceLink string `json:"conference_link,omitempty"`
}

// Provider is one external calendar backend.
type Provider interface {
	FreeBusy(ctx context.Context, token *oauth2.Token, calendarID string, from, to time.Time) ([]BusyInterval, error)
	InsertEvent(ctx context.Context, token *oauth2.Token, calendarID string, event EventInput) (*CreatedEvent, error)
}

// TokenRefresher exchanges a refresh token for a fresh access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}
