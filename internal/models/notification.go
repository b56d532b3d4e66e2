package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTypeMeetingAutoScheduled = "meeting_auto_scheduled"
	NotificationTypeMeetingStatus        = "meeting_status"
	NotificationTypeCalendarSyncFailed   = "calendar_sync_failed"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"not null;index" json:"user_id"`
	Type    string         `gorm:"not null" json:"type"`
	Title   string         `gorm:"not null" json:"title"`
	Message string         `json:"message"`
	Data    datatypes.JSON `json:"data,omitempty"` // {"meeting_id": "...", "start_time": "..."}
	IsRead  bool           `gorm:"default:false" json:"is_read"`
	ReadAt  *time.Time     `json:"read_at,omitempty"`
}
