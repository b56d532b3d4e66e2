package repositories

import (
	"context"
	"errors"
	"time"

	"dealflow_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMeetingNotFound        = errors.New("meeting not found")
	ErrMeetingRequestNotFound = errors.New("meeting request not found")
	ErrRequestAlreadyExists   = errors.New("meeting request already exists for pair")
)

// Booking is the set of rows written together when a slot is confirmed.
type Booking struct {
	Request  *models.MeetingRequest
	Proposal *models.TimeProposal
	Meeting  *models.Meeting
}

// CalendarSyncUpdate records the outcome of pushing a meeting to calendars.
type CalendarSyncUpdate struct {
	Status   models.CalendarSyncStatus
	Error    string
	EventIDA string
	EventIDB string
	// LocationURL replaces the stored link when non-empty.
	LocationURL string
}

type MeetingRepository interface {
	// ExistsBetween reports any request between the two users, either direction, any status.
	ExistsBetween(ctx context.Context, userA, userB string) (bool, error)
	// CreateBooking writes request, proposal and meeting in one transaction.
	// It fails with ErrRequestAlreadyExists if the pair gained a request meanwhile.
	CreateBooking(ctx context.Context, b *Booking) error
	// HasOverlapping reports a SCHEDULED meeting of userID intersecting [start, end).
	HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error)

	FindMeetingByID(ctx context.Context, id string) (*models.Meeting, error)
	ListMeetingsByUser(ctx context.Context, userID string) ([]models.Meeting, error)
	UpdateCalendarSync(ctx context.Context, meetingID string, update CalendarSyncUpdate) error
	// CompleteEndedMeetings marks SCHEDULED meetings that ended before t as COMPLETED.
	CompleteEndedMeetings(ctx context.Context, before time.Time) (int64, error)

	FindRequestByID(ctx context.Context, id string) (*models.MeetingRequest, error)
	ListRequestsByUser(ctx context.Context, userID string) ([]models.MeetingRequest, error)
	// UpdateRequestStatus cancels the scheduled meeting when the request is cancelled or declined.
	UpdateRequestStatus(ctx context.Context, requestID string, status models.MeetingRequestStatus) error
}

type MeetingRepositoryImpl struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &MeetingRepositoryImpl{db: db}
}

func (r *MeetingRepositoryImpl) ExistsBetween(ctx context.Context, userA, userB string) (bool, error) {
	return existsBetween(r.db.WithContext(ctx), userA, userB)
}

func existsBetween(db *gorm.DB, userA, userB string) (bool, error) {
	var count int64
	err := db.Model(&models.MeetingRequest{}).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

func (r *MeetingRepositoryImpl) CreateBooking(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := existsBetween(tx, b.Request.FromUserID, b.Request.ToUserID)
		if err != nil {
			return err
		}
		if exists {
			return ErrRequestAlreadyExists
		}

		if err := tx.Create(b.Request).Error; err != nil {
			return err
		}

		b.Proposal.MeetingRequestID = b.Request.ID
		b.Proposal.StartTime = b.Proposal.StartTime.UTC()
		b.Proposal.EndTime = b.Proposal.EndTime.UTC()
		if err := tx.Create(b.Proposal).Error; err != nil {
			return err
		}

		b.Meeting.MeetingRequestID = b.Request.ID
		b.Meeting.StartTime = b.Meeting.StartTime.UTC()
		b.Meeting.EndTime = b.Meeting.EndTime.UTC()
		return tx.Create(b.Meeting).Error
	})
}

func (r *MeetingRepositoryImpl) HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Meeting{}).
		Where("(participant_a_id = ? OR participant_b_id = ?)", userID, userID).
		Where("status = ?", models.MeetingStatusScheduled).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC()).
		Count(&count).Error
	return count > 0, err
}

func (r *MeetingRepositoryImpl) FindMeetingByID(ctx context.Context, id string) (*models.Meeting, error) {
	var meeting models.Meeting
	err := r.db.WithContext(ctx).First(&meeting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *MeetingRepositoryImpl) ListMeetingsByUser(ctx context.Context, userID string) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := r.db.WithContext(ctx).
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Order("start_time ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *MeetingRepositoryImpl) UpdateCalendarSync(ctx context.Context, meetingID string, update CalendarSyncUpdate) error {
	fields := map[string]interface{}{
		"calendar_sync_status": update.Status,
		"calendar_sync_error":  update.Error,
		"event_id_a":           update.EventIDA,
		"event_id_b":           update.EventIDB,
	}
	if update.LocationURL != "" {
		fields["location_url"] = update.LocationURL
	}

	result := r.db.WithContext(ctx).Model(&models.Meeting{}).
		Where("id = ?", meetingID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRepositoryImpl) CompleteEndedMeetings(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Meeting{}).
		Where("status = ? AND end_time < ?", models.MeetingStatusScheduled, before.UTC()).
		Update("status", models.MeetingStatusCompleted)
	return result.RowsAffected, result.Error
}

func (r *MeetingRepositoryImpl) FindRequestByID(ctx context.Context, id string) (*models.MeetingRequest, error) {
	var request models.MeetingRequest
	err := r.db.WithContext(ctx).Preload("Proposals").First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *MeetingRepositoryImpl) ListRequestsByUser(ctx context.Context, userID string) ([]models.MeetingRequest, error) {
	var requests []models.MeetingRequest
	err := r.db.WithContext(ctx).
		Preload("Proposals").
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *MeetingRepositoryImpl) UpdateRequestStatus(ctx context.Context, requestID string, status models.MeetingRequestStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.MeetingRequest{}).
			Where("id = ?", requestID).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMeetingRequestNotFound
		}

		if status != models.MeetingRequestStatusCancelled && status != models.MeetingRequestStatusDeclined {
			return nil
		}
		return tx.Model(&models.Meeting{}).
			Where("meeting_request_id = ? AND status = ?", requestID, models.MeetingStatusScheduled).
			Update("status", models.MeetingStatusCancelled).Error
	})
}
