package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleServer(t *testing.T, handler http.HandlerFunc) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleProviderWithEndpoint(srv.URL + "/")
}

func TestGoogleFreeBusy(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	p := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/freeBusy"), r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars":{"primary":{"busy":[
			{"start":"2024-06-03T15:00:00Z","end":"2024-06-03T15:30:00Z"}]}}}`))
	})

	from := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	busy, err := p.FreeBusy(context.Background(), &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"},
		"primary", from, from.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "2024-06-03T00:00:00Z", gotBody["timeMin"])
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)))
	assert.True(t, busy[0].End.Equal(time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)))
}

func TestGoogleFreeBusyCalendarError(t *testing.T) {
	p := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars":{"primary":{"errors":[{"domain":"global","reason":"notFound"}]}}}`))
	})

	_, err := p.FreeBusy(context.Background(), &oauth2.Token{AccessToken: "tok"}, "primary", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notFound")
}

func TestGoogleInsertEventWithConference(t *testing.T) {
	var gotQuery string
	var gotEvent map[string]interface{}

	p := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEvent))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-1","htmlLink":"https://calendar.example/evt-1",
			"conferenceData":{"entryPoints":[{"entryPointType":"video","uri":"https://meet.example/abc"}]}}`))
	})

	start := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	created, err := p.InsertEvent(context.Background(), &oauth2.Token{AccessToken: "tok"}, "primary", EventInput{
		Summary:             "Intro",
		Start:               start,
		End:                 start.Add(30 * time.Minute),
		Timezone:            "UTC",
		Attendees:           []string{"a@example.com", " ", "b@example.com"},
		ConferenceRequestID: "req-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", created.ID)
	assert.Equal(t, "https://calendar.example/evt-1", created.HTMLLink)
	assert.Equal(t, "https://meet.example/abc", created.ConferenceLink)
	assert.Contains(t, gotQuery, "conferenceDataVersion=1")
	assert.Contains(t, gotQuery, "sendUpdates=none")
	assert.Len(t, gotEvent["attendees"], 2)
	assert.NotNil(t, gotEvent["conferenceData"])
}

func TestGoogleInsertEventError(t *testing.T) {
	p := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	})

	_, err := p.InsertEvent(context.Background(), &oauth2.Token{AccessToken: "tok"}, "primary", EventInput{
		Start: time.Now(), End: time.Now().Add(time.Hour),
	})
	assert.Error(t, err)
}
