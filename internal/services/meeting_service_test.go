package services

import (
	"context"
	"testing"

	"dealflow_backend/internal/models"
	"dealflow_backend/internal/testutil"
	"dealflow_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) meetingService() MeetingService {
	return NewMeetingService(f.meetings, f.users, f.gateway, f.notifications)
}

func TestUpdateRequestStatusDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := testutil.CreateUser(t, f.db, models.UserRoleInvestor, false)
	co := testutil.CreateUser(t, f.db, models.UserRoleCompany, false)
	outsider := testutil.CreateUser(t, f.db, models.UserRoleCompany, false)

	request := &models.MeetingRequest{
		FromUserID: inv.ID,
		ToUserID:   co.ID,
		FromRole:   models.UserRoleInvestor,
		ToRole:     models.UserRoleCompany,
		Status:     models.MeetingRequestStatusPending,
	}
	require.NoError(t, f.db.Create(request).Error)
	svc := f.meetingService()

	_, err := svc.UpdateRequestStatus(ctx, outsider.ID, request.ID, models.MeetingRequestStatusDeclined)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = svc.UpdateRequestStatus(ctx, inv.ID, request.ID, models.MeetingRequestStatusDeclined)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMeetingTransition)

	_, err = svc.UpdateRequestStatus(ctx, co.ID, request.ID, models.MeetingRequestStatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMeetingTransition)

	updated, err := svc.UpdateRequestStatus(ctx, co.ID, request.ID, models.MeetingRequestStatusDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingRequestStatusDeclined, updated.Status)

	unread, err := f.notifications.UnreadCount(ctx, inv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	_, err = svc.UpdateRequestStatus(ctx, inv.ID, request.ID, models.MeetingRequestStatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMeetingTransition)

	_, err = svc.UpdateRequestStatus(ctx, inv.ID, "missing", models.MeetingRequestStatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrMeetingRequestNotFound)
}

func TestCancellingConfirmedRequestCancelsMeeting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, co := f.optedInPair(t)

	res, err := f.scheduler(SchedulerOptions{}).ScheduleAutoMeeting(ctx, inv.ID, co.ID)
	require.NoError(t, err)
	meeting, err := f.meetings.FindMeetingByID(ctx, res.MeetingID)
	require.NoError(t, err)

	_, err = f.meetingService().UpdateRequestStatus(ctx, co.ID, meeting.MeetingRequestID, models.MeetingRequestStatusCancelled)
	require.NoError(t, err)

	meeting, err = f.meetings.FindMeetingByID(ctx, res.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCancelled, meeting.Status)
}

func TestRetryCalendarSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, co := f.optedInPair(t)
	outsider := testutil.CreateUser(t, f.db, models.UserRoleCompany, false)
	f.gateway.connect(inv.ID)
	f.gateway.connect(co.ID)
	f.gateway.createErr[co.ID] = errCalendarDown

	res, err := f.scheduler(SchedulerOptions{}).ScheduleAutoMeeting(ctx, inv.ID, co.ID)
	require.NoError(t, err)
	require.True(t, res.CalendarSyncFailed)
	svc := f.meetingService()

	_, err = svc.RetryCalendarSync(ctx, outsider.ID, false, res.MeetingID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	delete(f.gateway.createErr, co.ID)
	out, err := svc.RetryCalendarSync(ctx, co.ID, false, res.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, models.CalendarSyncStatusSynced, out.Status)
	assert.Empty(t, out.Error)

	meeting, err := f.meetings.FindMeetingByID(ctx, res.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, "evt-"+inv.ID, meeting.EventIDA)
	assert.Equal(t, "evt-"+co.ID, meeting.EventIDB)
	assert.Empty(t, meeting.CalendarSyncError)
	assert.Equal(t, []string{inv.ID, co.ID}, f.gateway.created)

	_, err = svc.RetryCalendarSync(ctx, "admin", true, res.MeetingID)
	assert.ErrorIs(t, err, apperrors.ErrNothingToSync)

	_, err = svc.RetryCalendarSync(ctx, "admin", true, "missing")
	assert.ErrorIs(t, err, apperrors.ErrMeetingNotFound)
}
