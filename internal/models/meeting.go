package models

import "time"

type MeetingRequest struct {
	BaseModel
	FromUserID   string               `gorm:"not null;index:idx_request_pair" json:"from_user_id"`
	ToUserID     string               `gorm:"not null;index:idx_request_pair" json:"to_user_id"`
	FromRole     UserRole             `gorm:"type:varchar(20)" json:"from_role"`
	ToRole       UserRole             `gorm:"type:varchar(20)" json:"to_role"`
	Message      string               `json:"message"`
	Status       MeetingRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	AutoArranged bool                 `gorm:"default:false" json:"auto_arranged"`

	Proposals []TimeProposal `gorm:"foreignKey:MeetingRequestID" json:"proposals,omitempty"`
}

type TimeProposal struct {
	BaseModel
	MeetingRequestID string             `gorm:"not null;index" json:"meeting_request_id"`
	ProposedByUserID string             `gorm:"not null" json:"proposed_by_user_id"`
	StartTime        time.Time          `gorm:"not null" json:"start_time"`
	EndTime          time.Time          `gorm:"not null" json:"end_time"`
	Timezone         string             `json:"timezone"`
	Status           TimeProposalStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
}

type Meeting struct {
	BaseModel
	MeetingRequestID   string             `gorm:"index" json:"meeting_request_id"`
	ParticipantAID     string             `gorm:"column:participant_a_id;not null;index" json:"participant_a_id"`
	ParticipantBID     string             `gorm:"column:participant_b_id;not null;index" json:"participant_b_id"`
	StartTime          time.Time          `gorm:"not null;index" json:"start_time"`
	EndTime            time.Time          `gorm:"not null" json:"end_time"`
	Timezone           string             `json:"timezone"`
	LocationType       LocationType       `gorm:"type:varchar(20)" json:"location_type"`
	LocationURL        string             `json:"location_url"`
	Status             MeetingStatus      `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"status"`
	CalendarSyncStatus CalendarSyncStatus `gorm:"type:varchar(20);not null;default:'none'" json:"calendar_sync_status"`
	CalendarSyncError  string             `json:"calendar_sync_error,omitempty"`
	EventIDA           string             `gorm:"column:event_id_a" json:"event_id_a,omitempty"`
	EventIDB           string             `gorm:"column:event_id_b" json:"event_id_b,omitempty"`
}

// Participants returns both participant ids in stored order.
func (m *Meeting) Participants() [2]string {
	return [2]string{m.ParticipantAID, m.ParticipantBID}
}
