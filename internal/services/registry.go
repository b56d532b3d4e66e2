package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	UserService         UserService
	MatchingService     MatchingService
	AvailabilityService AvailabilityService
	CalendarService     CalendarService
	SchedulerService    SchedulerService
	MeetingService      MeetingService
	NotificationService NotificationService
}
