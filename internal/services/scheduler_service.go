package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/models"
	"dealflow_backend/internal/repositories"
	"dealflow_backend/internal/services/dto"
	"dealflow_backend/pkg/apperrors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPairDelay  = 500 * time.Millisecond
	DefaultRunTimeout = 10 * time.Minute

	autoMeetingMessage = "Arranged automatically: both of you opted in and share availability."
)

type SchedulerService interface {
	// FindPotentialMatches lists opted-in investor/company pairs with no
	// request between them and a shared slot.
	FindPotentialMatches(ctx context.Context) ([]dto.PotentialMatch, error)
	// ScheduleAutoMeeting runs the full pipeline for one pair.
	ScheduleAutoMeeting(ctx context.Context, investorID, companyID string) (*dto.AutoMeetingResult, error)
	// RunScheduler processes every candidate pair sequentially. Per-pair
	// failures are reported in the summary, never returned.
	RunScheduler(ctx context.Context) dto.RunSummary
}

type SchedulerOptions struct {
	PairDelay  time.Duration
	RunTimeout time.Duration
	Now        func() time.Time
}

type schedulerService struct {
	userRepo      repositories.UserRepository
	meetingRepo   repositories.MeetingRepository
	availability  AvailabilityService
	calendar      CalendarGateway
	notifications NotificationService

	pairDelay  time.Duration
	runTimeout time.Duration
	now        func() time.Time
}

type candidatePair struct {
	investor participant
	company  participant
	slot     dto.Slot
}

func NewSchedulerService(
	userRepo repositories.UserRepository,
	meetingRepo repositories.MeetingRepository,
	availability AvailabilityService,
	calendar CalendarGateway,
	notifications NotificationService,
	opts SchedulerOptions,
) SchedulerService {
	if opts.PairDelay < 0 {
		opts.PairDelay = 0
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &schedulerService{
		userRepo:      userRepo,
		meetingRepo:   meetingRepo,
		availability:  availability,
		calendar:      calendar,
		notifications: notifications,
		pairDelay:     opts.PairDelay,
		runTimeout:    opts.RunTimeout,
		now:           opts.Now,
	}
}

func (s *schedulerService) FindPotentialMatches(ctx context.Context) ([]dto.PotentialMatch, error) {
	candidates, _, err := s.discover(ctx)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	matches := make([]dto.PotentialMatch, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, dto.PotentialMatch{
			InvestorID: c.investor.ID,
			CompanyID:  c.company.ID,
			Slot:       c.slot,
		})
	}
	return matches, nil
}

// discover returns bookable pairs and how many pairs were skipped.
func (s *schedulerService) discover(ctx context.Context) ([]candidatePair, int, error) {
	users, err := s.userRepo.ListOptedInUsers(ctx, true)
	if err != nil {
		return nil, 0, fmt.Errorf("list opted-in users: %w", err)
	}

	var investors, companies []models.OptedInUser
	for _, u := range users {
		switch u.Role {
		case models.UserRoleInvestor:
			investors = append(investors, u)
		case models.UserRoleCompany:
			companies = append(companies, u)
		}
	}

	now := s.now()
	var candidates []candidatePair
	skipped := 0
	for _, inv := range investors {
		for _, co := range companies {
			if err := ctx.Err(); err != nil {
				return candidates, skipped, err
			}

			exists, err := s.meetingRepo.ExistsBetween(ctx, inv.ID, co.ID)
			if err != nil {
				logger.CtxWarn(ctx, "pair lookup failed, skipping pair",
					"investor_id", inv.ID, "company_id", co.ID, "error", err)
				skipped++
				continue
			}
			if exists {
				skipped++
				continue
			}

			slot, err := s.availability.FindOverlap(ctx, inv.ID, co.ID, now)
			if err != nil {
				logger.CtxWarn(ctx, "overlap search failed, skipping pair",
					"investor_id", inv.ID, "company_id", co.ID, "error", err)
				skipped++
				continue
			}
			if slot == nil {
				skipped++
				continue
			}

			candidates = append(candidates, candidatePair{
				investor: participantFromOptIn(inv),
				company:  participantFromOptIn(co),
				slot:     *slot,
			})
		}
	}
	return candidates, skipped, nil
}

func (s *schedulerService) ScheduleAutoMeeting(ctx context.Context, investorID, companyID string) (*dto.AutoMeetingResult, error) {
	investor, err := s.loadParticipant(ctx, investorID, models.UserRoleInvestor)
	if err != nil {
		return nil, err
	}
	company, err := s.loadParticipant(ctx, companyID, models.UserRoleCompany)
	if err != nil {
		return nil, err
	}

	result := &dto.AutoMeetingResult{InvestorID: investorID, CompanyID: companyID}

	exists, err := s.meetingRepo.ExistsBetween(ctx, investorID, companyID)
	if err != nil {
		result.Status, result.Reason = dto.AutoMeetingFailed, "pair lookup failed"
		return result, nil
	}
	if exists {
		result.Status, result.Reason = dto.AutoMeetingSkipped, "meeting request already exists"
		return result, nil
	}

	slot, err := s.availability.FindOverlap(ctx, investorID, companyID, s.now())
	if err != nil {
		result.Status, result.Reason = dto.AutoMeetingFailed, "availability lookup failed"
		return result, nil
	}
	if slot == nil {
		result.Status, result.Reason = dto.AutoMeetingSkipped, "no overlapping availability"
		return result, nil
	}

	r := s.bookPair(ctx, candidatePair{investor: investor, company: company, slot: *slot})
	return &r, nil
}

func (s *schedulerService) loadParticipant(ctx context.Context, userID string, role models.UserRole) (participant, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return participant{}, apperrors.ErrNotFound(err, "user", "User not found")
		}
		return participant{}, apperrors.InternalError(err)
	}
	if user.Role != role {
		return participant{}, apperrors.ErrInvalidUserRole.WithDetails(map[string]string{
			"user_id": userID, "expected_role": string(role),
		})
	}
	return participantFromUser(user), nil
}

// bookPair runs conflict check, booking, calendar sync and notification for
// one pair with a known slot. A panic becomes a failed result.
func (s *schedulerService) bookPair(ctx context.Context, c candidatePair) (result dto.AutoMeetingResult) {
	start := c.slot.Start
	result = dto.AutoMeetingResult{
		InvestorID:    c.investor.ID,
		CompanyID:     c.company.ID,
		SuggestedTime: &start,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "auto meeting panicked",
				"investor_id", c.investor.ID, "company_id", c.company.ID, "panic", fmt.Sprint(r))
			result.Status, result.Reason, result.MeetingID = dto.AutoMeetingFailed, "internal error", ""
		}
	}()

	if !s.bothAvailable(ctx, c) {
		result.Status, result.Reason = dto.AutoMeetingFailed, "calendar conflict"
		return result
	}

	booking := &repositories.Booking{
		Request: &models.MeetingRequest{
			FromUserID:   c.investor.ID,
			ToUserID:     c.company.ID,
			FromRole:     models.UserRoleInvestor,
			ToRole:       models.UserRoleCompany,
			Message:      autoMeetingMessage,
			Status:       models.MeetingRequestStatusConfirmed,
			AutoArranged: true,
		},
		Proposal: &models.TimeProposal{
			ProposedByUserID: c.investor.ID,
			StartTime:        c.slot.Start,
			EndTime:          c.slot.End,
			Timezone:         c.slot.Timezone,
			Status:           models.TimeProposalStatusAccepted,
		},
		Meeting: &models.Meeting{
			ParticipantAID:     c.investor.ID,
			ParticipantBID:     c.company.ID,
			StartTime:          c.slot.Start,
			EndTime:            c.slot.End,
			Timezone:           c.slot.Timezone,
			LocationType:       models.LocationTypeVideo,
			Status:             models.MeetingStatusScheduled,
			CalendarSyncStatus: models.CalendarSyncStatusNone,
		},
	}

	if err := s.meetingRepo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repositories.ErrRequestAlreadyExists) {
			result.Status, result.Reason = dto.AutoMeetingSkipped, "meeting request already exists"
			return result
		}
		logger.CtxWithError(ctx, "auto meeting booking failed", err,
			"investor_id", c.investor.ID, "company_id", c.company.ID)
		result.Status, result.Reason = dto.AutoMeetingFailed, "booking failed"
		return result
	}

	meeting := booking.Meeting
	result.Status = dto.AutoMeetingScheduled
	result.MeetingID = meeting.ID

	update := syncMeetingCalendars(ctx, s.calendar, meeting, c.investor, c.company)
	if err := s.meetingRepo.UpdateCalendarSync(ctx, meeting.ID, update); err != nil {
		logger.CtxWithError(ctx, "failed to record calendar sync status", err, "meeting_id", meeting.ID)
	}
	if update.Status == models.CalendarSyncStatusFailed {
		result.CalendarSyncFailed = true
	}

	s.notifyParticipants(ctx, meeting, update, c.investor, c.company)

	logger.CtxInfo(ctx, "auto meeting scheduled",
		"meeting_id", meeting.ID,
		"investor_id", c.investor.ID,
		"company_id", c.company.ID,
		"start", meeting.StartTime,
		"calendar_sync_status", update.Status)
	return result
}

// bothAvailable checks both participants concurrently.
func (s *schedulerService) bothAvailable(ctx context.Context, c candidatePair) bool {
	var free [2]bool
	var g errgroup.Group
	for i, p := range [2]participant{c.investor, c.company} {
		i, p := i, p
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.CtxError(ctx, "availability check panicked", "user_id", p.ID, "panic", fmt.Sprint(r))
					free[i] = false
				}
			}()
			cred, err := s.calendar.GetCredential(ctx, p.ID)
			if err != nil {
				logger.CtxWarn(ctx, "credential lookup failed, checking without calendar",
					"user_id", p.ID, "error", err)
				cred = nil
			}
			free[i] = s.calendar.IsTimeAvailable(ctx, p.ID, cred, c.slot.Start, c.slot.End)
			return nil
		})
	}
	_ = g.Wait()
	return free[0] && free[1]
}

func (s *schedulerService) notifyParticipants(ctx context.Context, meeting *models.Meeting, sync repositories.CalendarSyncUpdate, investor, company participant) {
	for _, pair := range [][2]participant{{investor, company}, {company, investor}} {
		me, other := pair[0], pair[1]
		err := s.notifications.Enqueue(ctx, me.ID,
			models.NotificationTypeMeetingAutoScheduled,
			"Meeting scheduled",
			fmt.Sprintf("A meeting with %s was scheduled for %s.",
				displayName(other), meeting.StartTime.UTC().Format(time.RFC1123)),
			map[string]interface{}{
				"meeting_id":           meeting.ID,
				"counterpart_id":       other.ID,
				"start_time":           meeting.StartTime.UTC(),
				"end_time":             meeting.EndTime.UTC(),
				"calendar_sync_status": sync.Status,
			})
		if err != nil {
			logger.CtxWarn(ctx, "failed to enqueue meeting notification",
				"meeting_id", meeting.ID, "user_id", me.ID, "error", err)
		}
	}
}

func (s *schedulerService) RunScheduler(ctx context.Context) dto.RunSummary {
	correlationID := uuid.NewString()
	ctx = logger.WithCorrelationID(ctx, correlationID)
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	summary := dto.RunSummary{
		CorrelationID: correlationID,
		StartedAt:     s.now(),
		Results:       []dto.AutoMeetingResult{},
	}
	logger.CtxInfo(ctx, "scheduler run started")

	candidates, skipped, err := s.discover(runCtx)
	summary.Skipped = skipped
	if err != nil {
		if runCtx.Err() != nil {
			summary.TimedOut = true
		}
		logger.CtxWithError(ctx, "scheduler discovery stopped early", err, "candidates", len(candidates))
	}

	for i, c := range candidates {
		if i > 0 && !s.wait(runCtx) {
			summary.TimedOut = true
			break
		}
		if runCtx.Err() != nil {
			summary.TimedOut = true
			break
		}

		res := s.bookPair(runCtx, c)
		summary.Results = append(summary.Results, res)
		switch res.Status {
		case dto.AutoMeetingScheduled:
			summary.Scheduled++
		case dto.AutoMeetingFailed:
			summary.Failed++
		case dto.AutoMeetingSkipped:
			summary.Skipped++
		}
	}

	summary.FinishedAt = s.now()
	logger.CtxInfo(ctx, "scheduler run finished",
		"scheduled", summary.Scheduled,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"timed_out", summary.TimedOut)
	return summary
}

// wait sleeps the inter-pair delay; false means the run was cancelled.
func (s *schedulerService) wait(ctx context.Context) bool {
	if s.pairDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.pairDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
