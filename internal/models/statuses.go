package models

type UserStatus string
type UserRole string
type MeetingRequestStatus string
type TimeProposalStatus string
type MeetingStatus string
type CalendarSyncStatus string
type LocationType string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleInvestor UserRole = "investor"
	UserRoleCompany  UserRole = "company"
	UserRoleAdmin    UserRole = "admin"

	MeetingRequestStatusPending   MeetingRequestStatus = "PENDING"
	MeetingRequestStatusConfirmed MeetingRequestStatus = "CONFIRMED"
	MeetingRequestStatusDeclined  MeetingRequestStatus = "DECLINED"
	MeetingRequestStatusCancelled MeetingRequestStatus = "CANCELLED"

	TimeProposalStatusPending  TimeProposalStatus = "PENDING"
	TimeProposalStatusAccepted TimeProposalStatus = "ACCEPTED"
	TimeProposalStatusDeclined TimeProposalStatus = "DECLINED"

	MeetingStatusScheduled MeetingStatus = "SCHEDULED"
	MeetingStatusCancelled MeetingStatus = "CANCELLED"
	MeetingStatusCompleted MeetingStatus = "COMPLETED"

	// CalendarSyncStatusNone means no participant had a connected calendar.
	CalendarSyncStatusNone   CalendarSyncStatus = "none"
	CalendarSyncStatusSynced CalendarSyncStatus = "synced"
	CalendarSyncStatusFailed CalendarSyncStatus = "failed"

	LocationTypeVideo    LocationType = "video"
	LocationTypeInPerson LocationType = "in_person"
	LocationTypePhone    LocationType = "phone"
)

// IsActive reports whether a request still blocks new outreach between the pair.
func (s MeetingRequestStatus) IsActive() bool {
	return s == MeetingRequestStatusPending || s == MeetingRequestStatusConfirmed
}
