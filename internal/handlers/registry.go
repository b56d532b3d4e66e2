package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	HealthHandler       *HealthHandler
	MatchingHandler     *MatchingHandler
	AvailabilityHandler *AvailabilityHandler
	CalendarHandler     *CalendarHandler
	SchedulingHandler   *SchedulingHandler
	MeetingHandler      *MeetingHandler
	NotificationHandler *NotificationHandler
}
