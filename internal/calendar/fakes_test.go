package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"dealflow_backend/internal/models"

	"golang.org/x/oauth2"
)

type memCreds struct {
	mu     sync.Mutex
	rows   map[string]models.OAuthCredential
	stored int
}

func newMemCreds(creds ...models.OAuthCredential) *memCreds {
	m := &memCreds{rows: map[string]models.OAuthCredential{}}
	for _, c := range creds {
		m.rows[c.UserID] = c
	}
	return m
}

func (m *memCreds) Get(_ context.Context, userID, _ string) (*models.OAuthCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCreds) Store(_ context.Context, cred *models.OAuthCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[cred.UserID] = *cred
	m.stored++
	return nil
}

func (m *memCreds) Delete(_ context.Context, userID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

type fakeProvider struct {
	busy      []BusyInterval
	busyErr   error
	delay     time.Duration
	insertErr error
	inserted  []EventInput
	tokens    []string
}

func (f *fakeProvider) FreeBusy(ctx context.Context, token *oauth2.Token, _ string, _, _ time.Time) ([]BusyInterval, error) {
	f.tokens = append(f.tokens, token.AccessToken)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.busy, f.busyErr
}

func (f *fakeProvider) InsertEvent(_ context.Context, token *oauth2.Token, _ string, ev EventInput) (*CreatedEvent, error) {
	f.tokens = append(f.tokens, token.AccessToken)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, ev)
	return &CreatedEvent{ID: "evt", HTMLLink: "https://calendar.example/evt"}, nil
}

type fakeRefresher struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context, *oauth2.Token) (*oauth2.Token, error) {
	f.calls++
	return f.token, f.err
}

type fakeConflicts struct {
	taken bool
	err   error
}

func (f *fakeConflicts) HasOverlapping(context.Context, string, time.Time, time.Time) (bool, error) {
	return f.taken, f.err
}

var errUpstream = errors.New("upstream unavailable")
