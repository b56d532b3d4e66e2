package auth

import "dealflow_backend/internal/models"

const (
	PermMatchingRead     = "matching:read"
	PermAvailabilityEdit = "availability:write"
	PermCalendarConnect  = "calendar:connect"
	PermMeetingsRead     = "meetings:read"
	PermSchedulerAdmin   = "scheduler:admin"
	PermCacheAdmin       = "cache:admin"
)

// Permissions per role.
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermMatchingRead,
		PermMeetingsRead,
		PermSchedulerAdmin,
		PermCacheAdmin,
	},
	models.UserRoleInvestor: {
		PermMatchingRead,
		PermAvailabilityEdit,
		PermCalendarConnect,
		PermMeetingsRead,
	},
	models.UserRoleCompany: {
		PermAvailabilityEdit,
		PermCalendarConnect,
		PermMeetingsRead,
	},
}

func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
