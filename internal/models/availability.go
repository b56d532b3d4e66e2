package models

// AvailabilityWindow is one recurring weekly slot. DayOfWeek follows time.Weekday (0 = Sunday).
type AvailabilityWindow struct {
	BaseModel
	UserID    string `gorm:"not null;index" json:"user_id"`
	DayOfWeek int    `gorm:"not null" json:"day_of_week"`
	StartTime string `gorm:"type:varchar(5);not null" json:"start_time"` // HH:MM
	EndTime   string `gorm:"type:varchar(5);not null" json:"end_time"`   // HH:MM
	Timezone  string `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
}
