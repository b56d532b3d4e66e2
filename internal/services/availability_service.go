package services

import (
	"context"
	"time"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/pkg/apperrors"
)

const (
	MaxAvailabilityWindows = 7
	DefaultMeetingDuration = 30 * time.Minute
)

type AvailabilityService interface {
	SetWindows(ctx context.Context, userID string, req *dto.SetAvailabilityRequest) ([]models.AvailabilityWindow, error)
	GetWindows(ctx context.Context, userID string) ([]models.AvailabilityWindow, error)
	// FindOverlap returns the first shared slot of at least the meeting
	// duration, or nil when the users share none.
	FindOverlap(ctx context.Context, userA, userB string, now time.Time) (*dto.Slot, error)
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	duration         time.Duration
}

func NewAvailabilityService(availabilityRepo repositories.AvailabilityRepository, meetingDuration time.Duration) AvailabilityService {
	if meetingDuration <= 0 {
		meetingDuration = DefaultMeetingDuration
	}
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		duration:         meetingDuration,
	}
}

func (s *availabilityService) SetWindows(ctx context.Context, userID string, req *dto.SetAvailabilityRequest) ([]models.AvailabilityWindow, error) {
	if len(req.Windows) > MaxAvailabilityWindows {
		return nil, apperrors.ErrTooManyWindows
	}

	windows := make([]models.AvailabilityWindow, 0, len(req.Windows))
	for i, in := range req.Windows {
		if in.DayOfWeek == nil || *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
			return nil, apperrors.ErrInvalidWindow.WithDetails(map[string]int{"index": i})
		}
		start, okStart := parseClock(in.StartTime)
		end, okEnd := parseClock(in.EndTime)
		if !okStart || !okEnd || start >= end {
			return nil, apperrors.ErrInvalidWindow.WithDetails(map[string]int{"index": i})
		}

		tz := in.Timezone
		if tz == "" {
			tz = "UTC"
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, apperrors.ErrInvalidWindow.WithDetails(map[string]string{"timezone": tz})
		}

		windows = append(windows, models.AvailabilityWindow{
			UserID:    userID,
			DayOfWeek: *in.DayOfWeek,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Timezone:  tz,
		})
	}

	if err := s.availabilityRepo.ReplaceForUser(ctx, userID, windows); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "availability updated", "user_id", userID, "windows", len(windows))
	return s.GetWindows(ctx, userID)
}

func (s *availabilityService) GetWindows(ctx context.Context, userID string) ([]models.AvailabilityWindow, error) {
	windows, err := s.availabilityRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return windows, nil
}

func (s *availabilityService) FindOverlap(ctx context.Context, userA, userB string, now time.Time) (*dto.Slot, error) {
	windowsA, err := s.availabilityRepo.ListByUser(ctx, userA)
	if err != nil {
		return nil, err
	}
	if len(windowsA) == 0 {
		return nil, nil
	}
	windowsB, err := s.availabilityRepo.ListByUser(ctx, userB)
	if err != nil {
		return nil, err
	}

	return FirstOverlap(windowsA, windowsB, now, s.duration), nil
}

// FirstOverlap walks a's windows in order, then b's, and returns the first
// same-weekday pair whose intersection fits duration. The slot lands on the
// next occurrence of that weekday in a's timezone, a week later if that
// occurrence has already started. Each window is read in its own timezone.
func FirstOverlap(a, b []models.AvailabilityWindow, now time.Time, duration time.Duration) *dto.Slot {
	for _, wa := range a {
		for _, wb := range b {
			if wa.DayOfWeek != wb.DayOfWeek {
				continue
			}
			if slot := overlapOn(wa, wb, now, duration); slot != nil {
				return slot
			}
		}
	}
	return nil
}

func overlapOn(wa, wb models.AvailabilityWindow, now time.Time, duration time.Duration) *dto.Slot {
	startA, okA1 := parseClock(wa.StartTime)
	endA, okA2 := parseClock(wa.EndTime)
	startB, okB1 := parseClock(wb.StartTime)
	endB, okB2 := parseClock(wb.EndTime)
	if !okA1 || !okA2 || !okB1 || !okB2 {
		return nil
	}

	locA := loadLocation(wa.Timezone)
	locB := loadLocation(wb.Timezone)

	day := nextWeekday(now.In(locA), time.Weekday(wa.DayOfWeek))
	for attempt := 0; attempt < 2; attempt++ {
		y, m, d := day.Date()

		aFrom := time.Date(y, m, d, 0, startA, 0, 0, locA)
		aTo := time.Date(y, m, d, 0, endA, 0, 0, locA)
		bFrom := time.Date(y, m, d, 0, startB, 0, 0, locB)
		bTo := time.Date(y, m, d, 0, endB, 0, 0, locB)

		from := latest(aFrom, bFrom)
		to := earliest(aTo, bTo)
		if to.Sub(from) < duration {
			return nil
		}
		if !from.Before(now) {
			return &dto.Slot{
				Start:     from,
				End:       from.Add(duration),
				Timezone:  locA.String(),
				DayOfWeek: wa.DayOfWeek,
			}
		}
		day = day.AddDate(0, 0, 7)
	}
	return nil
}

const endOfDay = "24:00"

// nextWeekday returns midnight of the first day on or after t that falls on wd.
func nextWeekday(t time.Time, wd time.Weekday) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	delta := (int(wd) - int(t.Weekday()) + 7) % 7
	return midnight.AddDate(0, 0, delta)
}

// parseClock converts "HH:MM" to minutes after midnight. "24:00" is 1440 and
// only valid as a window end.
func parseClock(s string) (int, bool) {
	if s == endOfDay {
		return 24 * 60, true
	}
	if len(s) != 5 {
		return 0, false
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
