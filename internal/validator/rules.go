package validator

import (
	"time"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules registers the project-specific tags on v.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Fatal("failed to register custom validation tag", "tag", tag, "error", err)
		}
	}

	// 'hhmm': 24h clock time such as "09:30"; "24:00" marks the end of the day
	mustRegister("hhmm", validateClockTime)

	// 'timezone': IANA zone name loadable by time.LoadLocation
	mustRegister("timezone", validateTimezone)

	mustRegister("is-request-status", validateRequestStatus)
}

func validateClockTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || value == "24:00" {
		return true
	}
	_, err := time.Parse("15:04", value)
	return err == nil && len(value) == 5
}

func validateTimezone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.LoadLocation(value)
	return err == nil
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.MeetingRequestStatus(value) {
	case models.MeetingRequestStatusPending, models.MeetingRequestStatusConfirmed,
		models.MeetingRequestStatusDeclined, models.MeetingRequestStatusCancelled:
		return true
	default:
		return false
	}
}
