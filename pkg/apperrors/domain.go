package apperrors

import "net/http"

// ErrNotFound wraps a repository "not found" error into a 404.
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// --- Profiles ---

var ErrInvestorProfileNotFound = New(
	CodeNotFound,
	"profile",
	"Investor profile not found",
	http.StatusNotFound,
)

var ErrCompanyProfileNotFound = New(
	CodeNotFound,
	"profile",
	"Company profile not found",
	http.StatusNotFound,
)

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Availability ---

var ErrTooManyWindows = New(
	CodeValidationFailed,
	"availability",
	"At most 7 availability windows are allowed",
	http.StatusBadRequest,
)

var ErrInvalidWindow = New(
	CodeValidationFailed,
	"availability",
	"Availability window start must be before end",
	http.StatusBadRequest,
)

// --- Calendar ---

var ErrCalendarNotConnected = New(
	CodeNotFound,
	"calendar",
	"No calendar connected for this user",
	http.StatusNotFound,
)

var ErrInvalidOAuthState = New(
	CodeInvalidToken,
	"calendar",
	"Invalid or expired OAuth state",
	http.StatusBadRequest,
)

var ErrCalendarUnavailable = New(
	CodeExternalServiceError,
	"calendar",
	"Calendar provider error",
	http.StatusBadGateway,
)

var ErrCalendarNotConfigured = New(
	CodeExternalServiceError,
	"calendar",
	"Calendar integration is not configured",
	http.StatusServiceUnavailable,
)

// --- Meetings ---

var ErrMeetingNotFound = New(
	CodeNotFound,
	"meeting",
	"Meeting not found",
	http.StatusNotFound,
)

var ErrMeetingRequestNotFound = New(
	CodeNotFound,
	"meeting",
	"Meeting request not found",
	http.StatusNotFound,
)

var ErrInvalidMeetingTransition = New(
	CodeInvalidStatus,
	"meeting",
	"Status change not allowed for the current request status",
	http.StatusConflict,
)

var ErrNothingToSync = New(
	CodeInvalidOperation,
	"meeting",
	"Meeting calendar sync has not failed",
	http.StatusBadRequest,
)

// --- Notifications ---

var ErrNotificationNotFound = New(
	CodeNotFound,
	"notification",
	"Notification not found",
	http.StatusNotFound,
)
