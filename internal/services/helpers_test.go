package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dealflow_backend/internal/calendar"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Wednesday.
var fixedNow = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu        sync.Mutex
	creds     map[string]*models.OAuthCredential
	busy      map[string]bool
	createErr map[string]error
	panicOn   string
	created   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		creds:     map[string]*models.OAuthCredential{},
		busy:      map[string]bool{},
		createErr: map[string]error{},
	}
}

func (f *fakeGateway) connect(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds[userID] = &models.OAuthCredential{UserID: userID, AccessToken: "tok-" + userID}
}

func (f *fakeGateway) GetCredential(_ context.Context, userID string) (*models.OAuthCredential, error) {
	if userID == f.panicOn {
		panic("credential store exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds[userID], nil
}

func (f *fakeGateway) IsTimeAvailable(_ context.Context, userID string, cred *models.OAuthCredential, _, _ time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cred == nil || !f.busy[userID]
}

func (f *fakeGateway) CreateEvent(_ context.Context, userID string, _ *models.OAuthCredential, ev calendar.EventInput) (*calendar.CreatedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[userID]; err != nil {
		return nil, err
	}
	f.created = append(f.created, userID)
	return &calendar.CreatedEvent{
		ID:             "evt-" + userID,
		ConferenceLink: "https://meet.example/" + ev.ConferenceRequestID,
	}, nil
}

var errCalendarDown = errors.New("calendar api unavailable")

type fixture struct {
	db            *gorm.DB
	gateway       *fakeGateway
	users         repositories.UserRepository
	meetings      repositories.MeetingRepository
	availability  AvailabilityService
	notifications NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &fixture{
		db:            db,
		gateway:       newFakeGateway(),
		users:         repositories.NewUserRepository(db),
		meetings:      repositories.NewMeetingRepository(db),
		availability:  NewAvailabilityService(repositories.NewAvailabilityRepository(db), 30*time.Minute),
		notifications: NewNotificationService(repositories.NewNotificationRepository(db)),
	}
}

func (f *fixture) scheduler(opts SchedulerOptions) SchedulerService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewSchedulerService(f.users, f.meetings, f.availability, f.gateway, f.notifications, opts)
}

// mondayMorning gives the user a Monday 09:00-12:00 UTC window.
func (f *fixture) mondayMorning(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, repositories.NewAvailabilityRepository(f.db).ReplaceForUser(context.Background(), userID,
		[]models.AvailabilityWindow{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", Timezone: "UTC"}}))
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
