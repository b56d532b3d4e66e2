package services

import (
	"context"
	"errors"
	"fmt"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/pkg/apperrors"
)

type MeetingService interface {
	ListMeetings(ctx context.Context, userID string) ([]models.Meeting, error)
	ListRequests(ctx context.Context, userID string) ([]models.MeetingRequest, error)
	// UpdateRequestStatus lets the recipient decline a pending request and
	// either side cancel an active one.
	UpdateRequestStatus(ctx context.Context, actorID, requestID string, status models.MeetingRequestStatus) (*models.MeetingRequest, error)
	// RetryCalendarSync re-pushes a meeting whose calendar sync failed.
	RetryCalendarSync(ctx context.Context, actorID string, isAdmin bool, meetingID string) (*dto.CalendarSyncResult, error)
}

type meetingService struct {
	meetingRepo   repositories.MeetingRepository
	userRepo      repositories.UserRepository
	calendar      CalendarGateway
	notifications NotificationService
}

func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	userRepo repositories.UserRepository,
	calendar CalendarGateway,
	notifications NotificationService,
) MeetingService {
	return &meetingService{
		meetingRepo:   meetingRepo,
		userRepo:      userRepo,
		calendar:      calendar,
		notifications: notifications,
	}
}

func (s *meetingService) ListMeetings(ctx context.Context, userID string) ([]models.Meeting, error) {
	meetings, err := s.meetingRepo.ListMeetingsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return meetings, nil
}

func (s *meetingService) ListRequests(ctx context.Context, userID string) ([]models.MeetingRequest, error) {
	requests, err := s.meetingRepo.ListRequestsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return requests, nil
}

func (s *meetingService) UpdateRequestStatus(ctx context.Context, actorID, requestID string, status models.MeetingRequestStatus) (*models.MeetingRequest, error) {
	request, err := s.meetingRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetingRequestNotFound) {
			return nil, apperrors.ErrMeetingRequestNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if actorID != request.FromUserID && actorID != request.ToUserID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if !canTransition(request, actorID, status) {
		return nil, apperrors.ErrInvalidMeetingTransition.WithDetails(map[string]string{
			"from": string(request.Status),
			"to":   string(status),
		})
	}

	if err := s.meetingRepo.UpdateRequestStatus(ctx, requestID, status); err != nil {
		return nil, apperrors.InternalError(err)
	}
	request.Status = status

	other := request.FromUserID
	if actorID == request.FromUserID {
		other = request.ToUserID
	}
	err = s.notifications.Enqueue(ctx, other, models.NotificationTypeMeetingStatus,
		"Meeting request updated",
		fmt.Sprintf("A meeting request was %s.", lowerStatus(status)),
		map[string]interface{}{"meeting_request_id": requestID, "status": status})
	if err != nil {
		logger.CtxWarn(ctx, "failed to enqueue status notification", "request_id", requestID, "error", err)
	}

	return request, nil
}

func canTransition(request *models.MeetingRequest, actorID string, to models.MeetingRequestStatus) bool {
	switch to {
	case models.MeetingRequestStatusDeclined:
		return request.Status == models.MeetingRequestStatusPending && actorID == request.ToUserID
	case models.MeetingRequestStatusCancelled:
		return request.Status.IsActive()
	default:
		// CONFIRMED only comes from an accepted proposal or the auto path.
		return false
	}
}

func (s *meetingService) RetryCalendarSync(ctx context.Context, actorID string, isAdmin bool, meetingID string) (*dto.CalendarSyncResult, error) {
	meeting, err := s.meetingRepo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetingNotFound) {
			return nil, apperrors.ErrMeetingNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if !isAdmin && actorID != meeting.ParticipantAID && actorID != meeting.ParticipantBID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if meeting.CalendarSyncStatus != models.CalendarSyncStatusFailed || meeting.Status != models.MeetingStatusScheduled {
		return nil, apperrors.ErrNothingToSync
	}

	a, err := s.userRepo.FindByID(ctx, meeting.ParticipantAID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	b, err := s.userRepo.FindByID(ctx, meeting.ParticipantBID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	update := syncMeetingCalendars(ctx, s.calendar, meeting, participantFromUser(a), participantFromUser(b))
	if err := s.meetingRepo.UpdateCalendarSync(ctx, meeting.ID, update); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "calendar sync retried", "meeting_id", meeting.ID, "status", update.Status)
	return &dto.CalendarSyncResult{
		MeetingID: meeting.ID,
		Status:    update.Status,
		Error:     update.Error,
	}, nil
}

func lowerStatus(s models.MeetingRequestStatus) string {
	switch s {
	case models.MeetingRequestStatusDeclined:
		return "declined"
	case models.MeetingRequestStatusCancelled:
		return "cancelled"
	default:
		return string(s)
	}
}
