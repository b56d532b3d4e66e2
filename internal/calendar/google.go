package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider on Google Calendar v3.
type GoogleProvider struct {
	// endpoint overrides the API base URL; empty uses Google's.
	endpoint string
}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{}
}

// NewGoogleProviderWithEndpoint points the client at another base URL.
func NewGoogleProviderWithEndpoint(endpoint string) *GoogleProvider {
	return &GoogleProvider{endpoint: endpoint}
}

func (p *GoogleProvider) service(ctx context.Context, token *oauth2.Token) (*gcal.Service, error) {
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))),
	}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google calendar client: %w", err)
	}
	return svc, nil
}

func (p *GoogleProvider) FreeBusy(ctx context.Context, token *oauth2.Token, calendarID string, from, to time.Time) ([]BusyInterval, error) {
	svc, err := p.service(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: from.UTC().Format(time.RFC3339),
		TimeMax: to.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freebusy calendar %s: %s", calendarID, cal.Errors[0].Reason)
	}

	busy := make([]BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("freebusy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("freebusy end %q: %w", period.End, err)
		}
		busy = append(busy, BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

func (p *GoogleProvider) InsertEvent(ctx context.Context, token *oauth2.Token, calendarID string, event EventInput) (*CreatedEvent, error) {
	svc, err := p.service(ctx, token)
	if err != nil {
		return nil, err
	}

	ev := &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &gcal.EventDateTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: event.Timezone},
		End:         &gcal.EventDateTime{DateTime: event.End.Format(time.RFC3339), TimeZone: event.Timezone},
	}
	for _, email := range event.Attendees {
		if email = strings.TrimSpace(email); email != "" {
			ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: email})
		}
	}

	call := svc.Events.Insert(calendarID, ev).SendUpdates("none")
	if event.ConferenceRequestID != "" {
		ev.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             event.ConferenceRequestID,
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return &CreatedEvent{
		ID:             created.Id,
		HTMLLink:       created.HtmlLink,
		ConferenceLink: conferenceLink(created),
	}, nil
}

func conferenceLink(ev *gcal.Event) string {
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return ev.HangoutLink
}

// OAuthRefresher refreshes tokens against the configured OAuth endpoint.
type OAuthRefresher struct {
	config *oauth2.Config
}

func NewOAuthRefresher(config *oauth2.Config) *OAuthRefresher {
	return &OAuthRefresher{config: config}
}

func (r *OAuthRefresher) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	stale := *token
	// force the token source to hit the token endpoint
	stale.Expiry = time.Unix(1, 0)
	return r.config.TokenSource(ctx, &stale).Token()
}
