package repositories

import (
	"bytes"
	"context"
	"testing"
	"time"

	"dealflow_backend/internal/models"
	"dealflow_backend/internal/secrets"
	"dealflow_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOptedInUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	inv := testutil.CreateUser(t, db, models.UserRoleInvestor, true)
	co := testutil.CreateUser(t, db, models.UserRoleCompany, true)
	testutil.CreateUser(t, db, models.UserRoleCompany, false)

	repo := NewUserRepository(db)
	users, err := repo.ListOptedInUsers(ctx, true)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ids := []string{users[0].ID, users[1].ID}
	assert.ElementsMatch(t, []string{inv.ID, co.ID}, ids)

	require.NoError(t, repo.SetAutoArrangeOptIn(ctx, co.ID, false))
	users, err = repo.ListOptedInUsers(ctx, true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.UserRoleInvestor, users[0].Role)

	assert.ErrorIs(t, repo.SetAutoArrangeOptIn(ctx, "missing", true), ErrUserNotFound)
}

func TestProfileRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	inv := testutil.CreateUser(t, db, models.UserRoleInvestor, false)
	co := testutil.CreateUser(t, db, models.UserRoleCompany, false)

	ip := &models.InvestorProfile{UserID: inv.ID, Firm: "North Ventures"}
	ip.SetSectors([]string{"SaaS"})
	require.NoError(t, repo.SaveInvestorProfile(ctx, ip))

	cp := &models.CompanyProfile{UserID: co.ID, Name: "Acme", Sector: "SaaS"}
	require.NoError(t, repo.SaveCompanyProfile(ctx, cp))

	got, err := repo.FindInvestorProfileByUserID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"SaaS"}, got.GetSectors())

	_, err = repo.FindCompanyProfileByUserID(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrCompanyProfileNotFound)

	companies, err := repo.ListCompanyProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
}

func TestAvailabilityReplaceAndOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewAvailabilityRepository(db)

	require.NoError(t, repo.ReplaceForUser(ctx, "u1", []models.AvailabilityWindow{
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC"},
		{DayOfWeek: 1, StartTime: "14:00", EndTime: "15:00", Timezone: "UTC"},
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", Timezone: "UTC"},
	}))

	windows, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, 1, windows[0].DayOfWeek)
	assert.Equal(t, "09:00", windows[0].StartTime)
	assert.Equal(t, "14:00", windows[1].StartTime)
	assert.Equal(t, 3, windows[2].DayOfWeek)

	require.NoError(t, repo.ReplaceForUser(ctx, "u1", nil))
	windows, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestCredentialRepositorySealsTokens(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	box, err := secrets.NewBox(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)
	repo := NewCredentialRepository(db, box)

	cred, err := repo.Get(ctx, "u1", models.CalendarProviderGoogle)
	require.NoError(t, err)
	assert.Nil(t, cred)

	expires := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Store(ctx, &models.OAuthCredential{
		UserID:       "u1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expires,
	}))

	var raw models.OAuthCredential
	require.NoError(t, db.First(&raw, "user_id = ?", "u1").Error)
	assert.NotEqual(t, "access-1", raw.AccessToken)
	assert.Equal(t, "primary", raw.CalendarID)

	cred, err = repo.Get(ctx, "u1", models.CalendarProviderGoogle)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
	assert.True(t, expires.Equal(cred.ExpiresAt))

	// second store updates in place
	cred.AccessToken = "access-2"
	require.NoError(t, repo.Store(ctx, cred))

	var count int64
	db.Model(&models.OAuthCredential{}).Count(&count)
	assert.Equal(t, int64(1), count)

	cred, err = repo.Get(ctx, "u1", models.CalendarProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "access-2", cred.AccessToken)

	require.NoError(t, repo.Delete(ctx, "u1", models.CalendarProviderGoogle))
	cred, err = repo.Get(ctx, "u1", models.CalendarProviderGoogle)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func newBooking(from, to string, start time.Time) *Booking {
	return &Booking{
		Request: &models.MeetingRequest{
			FromUserID: from, ToUserID: to,
			FromRole: models.UserRoleInvestor, ToRole: models.UserRoleCompany,
			Status: models.MeetingRequestStatusConfirmed, AutoArranged: true,
		},
		Proposal: &models.TimeProposal{
			ProposedByUserID: from, StartTime: start, EndTime: start.Add(30 * time.Minute),
			Timezone: "UTC", Status: models.TimeProposalStatusAccepted,
		},
		Meeting: &models.Meeting{
			ParticipantAID: from, ParticipantBID: to,
			StartTime: start, EndTime: start.Add(30 * time.Minute), Timezone: "UTC",
			LocationType: models.LocationTypeVideo, Status: models.MeetingStatusScheduled,
			CalendarSyncStatus: models.CalendarSyncStatusNone,
		},
	}
}

func TestCreateBookingAndPairGuard(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewMeetingRepository(db)
	start := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	b := newBooking("inv", "co", start)
	require.NoError(t, repo.CreateBooking(ctx, b))
	assert.NotEmpty(t, b.Meeting.ID)
	assert.Equal(t, b.Request.ID, b.Meeting.MeetingRequestID)
	assert.Equal(t, b.Request.ID, b.Proposal.MeetingRequestID)

	exists, err := repo.ExistsBetween(ctx, "co", "inv")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.CreateBooking(ctx, newBooking("co", "inv", start.Add(time.Hour)))
	assert.ErrorIs(t, err, ErrRequestAlreadyExists)

	var requests int64
	db.Model(&models.MeetingRequest{}).Count(&requests)
	assert.Equal(t, int64(1), requests)
}

func TestHasOverlapping(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewMeetingRepository(db)
	start := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateBooking(ctx, newBooking("inv", "co", start)))

	busy, err := repo.HasOverlapping(ctx, "co", start.Add(15*time.Minute), start.Add(45*time.Minute))
	require.NoError(t, err)
	assert.True(t, busy)

	// touching intervals do not overlap
	busy, err = repo.HasOverlapping(ctx, "co", start.Add(30*time.Minute), start.Add(60*time.Minute))
	require.NoError(t, err)
	assert.False(t, busy)

	busy, err = repo.HasOverlapping(ctx, "someone-else", start, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestUpdateRequestStatusCancelsMeeting(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewMeetingRepository(db)
	b := newBooking("inv", "co", time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateBooking(ctx, b))

	require.NoError(t, repo.UpdateRequestStatus(ctx, b.Request.ID, models.MeetingRequestStatusCancelled))

	m, err := repo.FindMeetingByID(ctx, b.Meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCancelled, m.Status)

	req, err := repo.FindRequestByID(ctx, b.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingRequestStatusCancelled, req.Status)
	assert.Len(t, req.Proposals, 1)

	assert.ErrorIs(t, repo.UpdateRequestStatus(ctx, "missing", models.MeetingRequestStatusDeclined), ErrMeetingRequestNotFound)
}

func TestUpdateCalendarSync(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewMeetingRepository(db)
	b := newBooking("inv", "co", time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateBooking(ctx, b))

	require.NoError(t, repo.UpdateCalendarSync(ctx, b.Meeting.ID, CalendarSyncUpdate{
		Status: models.CalendarSyncStatusFailed, Error: "boom", EventIDA: "evt-a",
	}))

	m, err := repo.FindMeetingByID(ctx, b.Meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CalendarSyncStatusFailed, m.CalendarSyncStatus)
	assert.Equal(t, "boom", m.CalendarSyncError)
	assert.Equal(t, "evt-a", m.EventIDA)

	assert.ErrorIs(t, repo.UpdateCalendarSync(ctx, "missing", CalendarSyncUpdate{}), ErrMeetingNotFound)
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID: "u1", Type: models.NotificationTypeMeetingAutoScheduled, Title: "Meeting booked",
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: "u2", Type: "other", Title: "x"}))
	assert.Error(t, repo.Create(ctx, &models.Notification{UserID: "u1"}))

	list, total, err := repo.FindUserNotifications(ctx, "u1", NotificationCriteria{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)

	require.NoError(t, repo.MarkAsRead(ctx, "u1", list[0].ID))
	assert.ErrorIs(t, repo.MarkAsRead(ctx, "u2", list[1].ID), ErrNotificationNotFound)

	unread, err := repo.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	list, total, err = repo.FindUserNotifications(ctx, "u1", NotificationCriteria{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

func TestCompleteEndedMeetings(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewMeetingRepository(db)
	start := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	past := newBooking("inv", "co", start)
	future := newBooking("inv2", "co", start.Add(48*time.Hour))
	require.NoError(t, repo.CreateBooking(ctx, past))
	require.NoError(t, repo.CreateBooking(ctx, future))

	n, err := repo.CompleteEndedMeetings(ctx, start.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	m, err := repo.FindMeetingByID(ctx, past.Meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, m.Status)

	m, err = repo.FindMeetingByID(ctx, future.Meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusScheduled, m.Status)
}
