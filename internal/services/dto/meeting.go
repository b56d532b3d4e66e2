package dto

import "dealflow_backend/internal/models"

// ========================
// Meeting DTOs
// ========================

type UpdateRequestStatusRequest struct {
	Status models.MeetingRequestStatus `json:"status" validate:"required,is-request-status"`
}

type CalendarSyncResult struct {
	MeetingID string                    `json:"meeting_id"`
	Status    models.CalendarSyncStatus `json:"calendar_sync_status"`
	Error     string                    `json:"calendar_sync_error,omitempty"`
}
