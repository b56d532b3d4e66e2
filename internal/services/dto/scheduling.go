package dto

import "time"

// ========================
// Auto-arrangement DTOs
// ========================

type AutoMeetingStatus string

const (
	AutoMeetingScheduled AutoMeetingStatus = "scheduled"
	AutoMeetingFailed    AutoMeetingStatus = "failed"
	AutoMeetingSkipped   AutoMeetingStatus = "skipped"
)

type PotentialMatch struct {
	InvestorID string `json:"investor_id"`
	CompanyID  string `json:"company_id"`
	Slot       Slot   `json:"slot"`
}

type AutoMeetingResult struct {
	InvestorID    string            `json:"investor_id"`
	CompanyID     string            `json:"company_id"`
	SuggestedTime *time.Time        `json:"suggested_time,omitempty"`
	MeetingID     string            `json:"meeting_id,omitempty"`
	Status        AutoMeetingStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	// CalendarSyncFailed marks a booking that exists without calendar events.
	CalendarSyncFailed bool `json:"calendar_sync_failed,omitempty"`
}

type RunSummary struct {
	CorrelationID string              `json:"correlation_id"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    time.Time           `json:"finished_at"`
	Results       []AutoMeetingResult `json:"results"`
	Scheduled     int                 `json:"scheduled"`
	Failed        int                 `json:"failed"`
	Skipped       int                 `json:"skipped"`
	// TimedOut is set when the run deadline stopped iteration early.
	TimedOut bool `json:"timed_out,omitempty"`
}

type SchedulePairRequest struct {
	InvestorID string `json:"investor_id" validate:"required"`
	CompanyID  string `json:"company_id" validate:"required"`
}

type OptInRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
