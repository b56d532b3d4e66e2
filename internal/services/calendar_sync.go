package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dealflow_backend/internal/calendar"
	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"

	"golang.org/x/sync/errgroup"
)

// CalendarGateway is the part of the calendar adapter the services use.
type CalendarGateway interface {
	GetCredential(ctx context.Context, userID string) (*models.OAuthCredential, error)
	IsTimeAvailable(ctx context.Context, userID string, cred *models.OAuthCredential, start, end time.Time) bool
	CreateEvent(ctx context.Context, userID string, cred *models.OAuthCredential, event calendar.EventInput) (*calendar.CreatedEvent, error)
}

type participant struct {
	ID    string
	Email string
	Name  string
}

func participantFromUser(u *models.User) participant {
	return participant{ID: u.ID, Email: u.Email, Name: u.Name}
}

func participantFromOptIn(u models.OptedInUser) participant {
	return participant{ID: u.ID, Email: u.Email, Name: u.Name}
}

type eventOutcome struct {
	connected bool
	eventID   string
	link      string
	err       error
}

// syncMeetingCalendars pushes the meeting to every connected participant
// calendar concurrently. Participants that already have an event id are left
// alone so a retry never duplicates events.
func syncMeetingCalendars(ctx context.Context, gw CalendarGateway, meeting *models.Meeting, a, b participant) repositories.CalendarSyncUpdate {
	people := [2]participant{a, b}
	existing := [2]string{meeting.EventIDA, meeting.EventIDB}
	var outcomes [2]eventOutcome

	event := calendar.EventInput{
		Summary:     fmt.Sprintf("Intro meeting: %s / %s", displayName(a), displayName(b)),
		Description: "Arranged automatically from both participants' shared availability.",
		Start:       meeting.StartTime,
		End:         meeting.EndTime,
		Timezone:    meeting.Timezone,
		Attendees:   []string{a.Email, b.Email},
	}

	var g errgroup.Group
	for i := range people {
		i := i
		if existing[i] != "" {
			outcomes[i] = eventOutcome{connected: true, eventID: existing[i]}
			continue
		}
		g.Go(func() error {
			p := people[i]
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = eventOutcome{connected: true, err: fmt.Errorf("calendar sync for %s panicked: %v", p.ID, r)}
				}
			}()
			cred, err := gw.GetCredential(ctx, p.ID)
			if err != nil {
				outcomes[i] = eventOutcome{connected: true, err: fmt.Errorf("load credential for %s: %w", p.ID, err)}
				return nil
			}
			if cred == nil {
				return nil
			}

			ev := event
			ev.ConferenceRequestID = meeting.ID + "-" + p.ID
			created, err := gw.CreateEvent(ctx, p.ID, cred, ev)
			if err != nil {
				outcomes[i] = eventOutcome{connected: true, err: err}
				return nil
			}
			outcomes[i] = eventOutcome{connected: true, eventID: created.ID, link: created.ConferenceLink}
			return nil
		})
	}
	_ = g.Wait()

	update := repositories.CalendarSyncUpdate{
		Status:   models.CalendarSyncStatusNone,
		EventIDA: outcomes[0].eventID,
		EventIDB: outcomes[1].eventID,
	}

	var errs []string
	for _, o := range outcomes {
		if o.connected && update.Status == models.CalendarSyncStatusNone {
			update.Status = models.CalendarSyncStatusSynced
		}
		if o.err != nil {
			errs = append(errs, o.err.Error())
		}
		if update.LocationURL == "" && o.link != "" {
			update.LocationURL = o.link
		}
	}
	if len(errs) > 0 {
		update.Status = models.CalendarSyncStatusFailed
		update.Error = strings.Join(errs, "; ")
		logger.CtxWarn(ctx, "calendar sync failed for meeting",
			"meeting_id", meeting.ID, "error", update.Error)
	}
	return update
}

func displayName(p participant) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}
