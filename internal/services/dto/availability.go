package dto

import "time"

// ========================
// Availability DTOs
// ========================

type AvailabilityWindowInput struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`
}

type SetAvailabilityRequest struct {
	Windows []AvailabilityWindowInput `json:"windows" validate:"max=7,dive"`
}

// Slot is a concrete meeting time found in two users' weekly windows.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Timezone  string    `json:"timezone"`
	DayOfWeek int       `json:"day_of_week"`
}
