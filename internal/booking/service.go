package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"matbook/internal/credit"
	"matbook/internal/email"
	"matbook/internal/gym"
	"matbook/internal/logger"
	"matbook/internal/membership"
	"matbook/internal/metrics"
)

// EligibilityResult is the read-only preview of a booking attempt,
// served before the member commits.
type EligibilityResult struct {
	Eligible      bool              `json:"eligible"`
	Decision      FundingDecision   `json:"decision"`
	WeeklyUsage   int               `json:"weekly_usage"`
	WeeklyLimit   *int              `json:"weekly_limit,omitempty"`
	EligiblePlans []membership.Plan `json:"eligible_plans,omitempty"`
}

type Service interface {
	BookMember(ctx context.Context, classID int, dateStr string, userID int, opts BookOptions) (*BookResult, error)
	CancelBooking(ctx context.Context, attendanceID int, cancelledBy string, opts CancelOptions) (*CancelResult, error)
	CheckInMember(ctx context.Context, attendanceID int, programID *int, now time.Time) (*Attendance, error)
	ProcessWaitlist(ctx context.Context, classID int, dateStr string) (*WaitlistResult, error)
	CheckBookingEligibility(ctx context.Context, classID int, dateStr string, userID int) (*EligibilityResult, error)
	GetClassRoster(ctx context.Context, classID int, dateStr string) ([]RosterEntry, error)
	GetMemberAttendanceHistory(ctx context.Context, userID, limit, offset int) ([]Attendance, error)
	GetWeeklyClassCount(ctx context.Context, userID int, dateStr string) (int, error)
	GetWeeklyAttendanceCounts(ctx context.Context, gymID int, from, to string) ([]DayCount, error)
}

type service struct {
	store Store
	email *email.Service
	now   func() time.Time
}

// NewService wires the booking engine. emailSvc may be nil, in which
// case notifications are skipped.
func NewService(store Store, emailSvc *email.Service) Service {
	return &service{
		store: store,
		email: emailSvc,
		now:   time.Now,
	}
}

// notification captures an email to send strictly after the
// transaction commits. A booking that rolls back must never notify.
type notification struct {
	kind         string
	to           string
	name         string
	className    string
	classDate    string
	start        time.Time
	refunded     bool
	refundAmount int
}

func (s *service) dispatch(ctx context.Context, notes []notification) {
	if s.email == nil {
		return
	}
	for _, n := range notes {
		var err error
		switch n.kind {
		case "confirmation":
			err = s.email.SendBookingConfirmation(ctx, n.to, n.name, n.className, n.classDate, n.start)
		case "waitlisted":
			err = s.email.SendWaitlisted(ctx, n.to, n.name, n.className, n.classDate)
		case "promotion":
			err = s.email.SendWaitlistPromotion(ctx, n.to, n.name, n.className, n.classDate)
		case "cancellation":
			err = s.email.SendCancellation(ctx, n.to, n.name, n.className, n.classDate, n.refunded, n.refundAmount)
		}
		if err != nil {
			logger.Errorf("Failed to queue %s email to %s: %v", n.kind, n.to, err)
		}
	}
}

// BookMember books (or waitlists) a member into a class instance. The
// whole decision pipeline runs under a transaction holding the class
// row lock, so capacity checks and the roster write are atomic.
func (s *service) BookMember(ctx context.Context, classID int, dateStr string, userID int, opts BookOptions) (*BookResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = s.now()
	}

	result := &BookResult{}
	var notes []notification

	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		class, err := tx.GetClassForUpdate(ctx, classID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClassNotFound
		}
		if err != nil {
			return err
		}

		g, err := tx.GetGym(ctx, class.GymID)
		if err != nil {
			return err
		}
		loc := g.Location()

		u, err := tx.GetUserForUpdate(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if u.GymID != class.GymID {
			return ErrUserNotFound
		}

		existing, err := tx.GetAttendanceForKey(ctx, classID, dateStr, userID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status.Active() {
			return ErrAlreadyBooked
		}

		if err := CheckOccurrence(class, dateStr, loc); err != nil {
			return err
		}
		start, err := class.OccurrenceStart(dateStr, loc)
		if err != nil {
			return err
		}

		staffOrForce := opts.IsStaff || opts.Force
		if err := CheckBookingWindow(start, now, class.BookingWindowDays, staffOrForce); err != nil {
			return err
		}
		if err := CheckLateness(start, class.DurationMinutes, class.LateBookingMinutes, now, staffOrForce); err != nil {
			return err
		}

		memberships, err := tx.ListUserMemberships(ctx, userID, class.GymID)
		if err != nil {
			return err
		}

		decision, err := ResolveFunding(class, memberships, u.ClassCredits, opts)
		if err != nil {
			return err
		}
		// A forced booking must not fail on balance; drop the charge
		// instead and record the booking as a comp.
		if opts.Force && decision.Cost > u.ClassCredits {
			decision.Cost = 0
			decision.Type = TypeAdminComp
		}

		retro := IsRetroactive(start, class.DurationMinutes, now)

		status := StatusBooked
		if !opts.Force && !retro && class.MaxCapacity != nil {
			active, err := tx.CountActive(ctx, classID, dateStr)
			if err != nil {
				return err
			}
			if active >= *class.MaxCapacity {
				status = StatusWaitlisted
			}
		}
		var checkedInAt *time.Time
		if retro && status == StatusBooked {
			status = StatusAttended
			checkedInAt = &now
		}

		if decision.Cost > 0 {
			err := tx.ApplyCredits(ctx, userID, -decision.Cost, credit.TypeBooking,
				fmt.Sprintf("Booking: %s on %s", class.Name, dateStr),
				fmt.Sprintf("user:%d", userID), false)
			if err != nil {
				return err
			}
		}

		rec := &Attendance{
			GymID:       class.GymID,
			ClassID:     classID,
			ClassDate:   dateStr,
			UserID:      userID,
			Status:      status,
			BookingType: decision.Type,
			CostUsed:    decision.Cost,
			RulesSnapshot: RulesSnapshot{
				BookingWindowDays:  class.BookingWindowDays,
				LateBookingMinutes: class.LateBookingMinutes,
				CancelWindowHours:  class.CancelWindowHours,
				LateCancelFee:      class.LateCancelFee,
			},
			BookedAt:    now,
			CheckedInAt: checkedInAt,
		}
		saved, err := tx.UpsertAttendance(ctx, rec)
		if err != nil {
			return err
		}

		if status == StatusAttended && class.ProgramID != nil {
			if err := tx.RecordProgression(ctx, userID, *class.ProgramID); err != nil {
				return err
			}
		}

		result.Success = true
		result.Status = saved.Status
		result.BookingType = saved.BookingType
		result.CostUsed = saved.CostUsed
		result.Recovered = existing != nil

		note := notification{
			to: u.Email, name: u.Name,
			className: class.Name, classDate: dateStr, start: start,
		}
		if status == StatusWaitlisted {
			note.kind = "waitlisted"
		} else {
			note.kind = "confirmation"
		}
		notes = append(notes, note)

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(result.Status), string(result.BookingType))
	s.dispatch(ctx, notes)

	return result, nil
}

// CancelBooking cancels a booking, refunds when the cancellation is
// safe under the rules snapshot, and backfills the freed seat from the
// waitlist in the same transaction.
func (s *service) CancelBooking(ctx context.Context, attendanceID int, cancelledBy string, opts CancelOptions) (*CancelResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = s.now()
	}

	result := &CancelResult{}
	var notes []notification

	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		rec, err := tx.GetAttendanceByID(ctx, attendanceID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if opts.RequestedBy != 0 && rec.UserID != opts.RequestedBy {
			return ErrBookingNotFound
		}
		if rec.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}

		class, err := tx.GetClassForUpdate(ctx, rec.ClassID)
		if err != nil {
			return err
		}
		g, err := tx.GetGym(ctx, class.GymID)
		if err != nil {
			return err
		}
		start, err := class.OccurrenceStart(rec.ClassDate, g.Location())
		if err != nil {
			return err
		}

		// Lock the member row before any refund or fee ledger write;
		// credit.ApplyTx assumes the caller holds it.
		u, err := tx.GetUserForUpdate(ctx, rec.UserID)
		if err != nil {
			return err
		}

		wasWaitlisted := rec.Status == StatusWaitlisted
		wasAttended := rec.Status == StatusAttended
		freedSeat := rec.Status.OccupiesSeat()

		safe := IsSafeCancel(start, now, rec.CancelWindowHours, wasWaitlisted, false)
		if opts.RefundOverride != nil {
			safe = *opts.RefundOverride
		}

		refunded := safe && rec.CostUsed > 0
		refundAmount := 0
		if refunded {
			refundAmount = rec.CostUsed
			err := tx.ApplyCredits(ctx, rec.UserID, refundAmount, credit.TypeRefund,
				fmt.Sprintf("Refund: %s on %s", class.Name, rec.ClassDate),
				cancelledBy, false)
			if err != nil {
				return err
			}
		}

		lateCancel := !safe
		feeApplied := 0
		if lateCancel {
			feeApplied = rec.LateCancelFee
		}
		if opts.ChargeFee && feeApplied > 0 {
			err := tx.ApplyCredits(ctx, rec.UserID, -feeApplied, credit.TypeLateCancelFee,
				fmt.Sprintf("Late cancellation fee: %s on %s", class.Name, rec.ClassDate),
				cancelledBy, true)
			if err != nil {
				return err
			}
		}

		if wasAttended && class.ProgramID != nil {
			if err := tx.ReverseProgression(ctx, rec.UserID, *class.ProgramID); err != nil {
				return err
			}
		}

		if err := tx.MarkCancelled(ctx, rec.ID, now, refunded, refundAmount, lateCancel, feeApplied); err != nil {
			return err
		}

		notes = append(notes, notification{
			kind: "cancellation", to: u.Email, name: u.Name,
			className: class.Name, classDate: rec.ClassDate,
			refunded: refunded, refundAmount: refundAmount,
		})

		if freedSeat {
			promoted, promoNotes, err := s.promoteWaiters(ctx, tx, class, rec.ClassDate, now)
			if err != nil {
				return err
			}
			result.Promoted = promoted
			notes = append(notes, promoNotes...)
		}

		result.Success = true
		result.Refunded = refunded
		result.RefundAmount = refundAmount
		result.LateCancel = lateCancel
		result.FeeApplied = feeApplied

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCancellation(result.Refunded)
	for i := 0; i < result.Promoted; i++ {
		metrics.RecordWaitlistPromotion()
	}
	s.dispatch(ctx, notes)

	return result, nil
}

// promoteWaiters fills open seats from the waitlist in booking order.
// Caller must hold the class row lock.
func (s *service) promoteWaiters(ctx context.Context, tx Store, class *gym.Class, dateStr string, now time.Time) (int, []notification, error) {
	waiters, err := tx.ListWaitlisted(ctx, class.ID, dateStr)
	if err != nil || len(waiters) == 0 {
		return 0, nil, err
	}

	free := len(waiters)
	if class.MaxCapacity != nil {
		active, err := tx.CountActive(ctx, class.ID, dateStr)
		if err != nil {
			return 0, nil, err
		}
		free = *class.MaxCapacity - active
	}
	if free <= 0 {
		return 0, nil, nil
	}
	if free > len(waiters) {
		free = len(waiters)
	}

	var notes []notification
	for _, w := range waiters[:free] {
		if err := tx.PromoteToBooked(ctx, w.ID, now); err != nil {
			return 0, nil, err
		}
		u, err := tx.GetUser(ctx, w.UserID)
		if err != nil {
			return 0, nil, err
		}
		notes = append(notes, notification{
			kind: "promotion", to: u.Email, name: u.Name,
			className: class.Name, classDate: dateStr,
		})
	}

	return free, notes, nil
}

// ProcessWaitlist promotes waitlisted members into any open seats, for
// example after a capacity increase. Idempotent.
func (s *service) ProcessWaitlist(ctx context.Context, classID int, dateStr string) (*WaitlistResult, error) {
	now := s.now()
	result := &WaitlistResult{}
	var notes []notification

	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		class, err := tx.GetClassForUpdate(ctx, classID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClassNotFound
		}
		if err != nil {
			return err
		}

		promoted, promoNotes, err := s.promoteWaiters(ctx, tx, class, dateStr, now)
		if err != nil {
			return err
		}
		result.Success = true
		result.Promoted = promoted
		notes = promoNotes
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < result.Promoted; i++ {
		metrics.RecordWaitlistPromotion()
	}
	s.dispatch(ctx, notes)

	return result, nil
}

// CheckInMember marks the booking attended and records rank progression.
// programID, when non-nil, overrides the class's default program.
// Checking in an already-attended booking is a no-op.
func (s *service) CheckInMember(ctx context.Context, attendanceID int, programID *int, now time.Time) (*Attendance, error) {
	if now.IsZero() {
		now = s.now()
	}

	var rec *Attendance
	var checkedIn bool
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		var err error
		rec, err = tx.GetAttendanceByID(ctx, attendanceID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if rec.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		if rec.Status == StatusAttended {
			return nil
		}

		class, err := tx.GetClass(ctx, rec.ClassID)
		if err != nil {
			return err
		}

		if err := tx.MarkAttended(ctx, rec.ID, now); err != nil {
			return err
		}

		pid := class.ProgramID
		if programID != nil {
			pid = programID
		}
		if pid != nil {
			if err := tx.RecordProgression(ctx, rec.UserID, *pid); err != nil {
				return err
			}
		}

		rec.Status = StatusAttended
		rec.CheckedInAt = &now
		checkedIn = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if checkedIn {
		metrics.RecordCheckIn()
	}
	return rec, nil
}

// CheckBookingEligibility previews a booking without writing anything:
// funding, weekly plan limits, and, on denial, the public plans that
// would cover the class.
func (s *service) CheckBookingEligibility(ctx context.Context, classID int, dateStr string, userID int) (*EligibilityResult, error) {
	class, err := s.store.GetClass(ctx, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	memberships, err := s.store.ListUserMemberships(ctx, userID, class.GymID)
	if err != nil {
		return nil, err
	}

	result := &EligibilityResult{
		Decision: CanUserBook(class, memberships, u.ClassCredits),
	}
	result.Eligible = result.Decision.Allowed

	if result.Decision.Allowed && result.Decision.Type == TypeMembership {
		plan, err := s.store.GetPlan(ctx, result.Decision.MatchedPlanID)
		if err != nil {
			return nil, err
		}
		result.WeeklyLimit = plan.WeeklyLimit

		// nil or zero limit means unlimited.
		if plan.WeeklyLimit != nil && *plan.WeeklyLimit > 0 {
			g, err := s.store.GetGym(ctx, class.GymID)
			if err != nil {
				return nil, err
			}
			day, err := gym.ParseDate(dateStr, g.Location())
			if err != nil {
				return nil, err
			}
			weekStart, weekEnd := weekBounds(day)
			usage, err := s.store.CountWeeklyUsage(ctx, userID, weekStart, weekEnd)
			if err != nil {
				return nil, err
			}
			result.WeeklyUsage = usage

			if usage >= *plan.WeeklyLimit {
				switch {
				case class.CreditCost > 0 && u.ClassCredits >= class.CreditCost:
					result.Decision = FundingDecision{Allowed: true, Type: TypeCredit, Cost: class.CreditCost}
				case class.DropInEnabled && class.CreditCost == 0:
					result.Decision = FundingDecision{Allowed: true, Type: TypeDropIn, Cost: 0}
				default:
					result.Eligible = false
					result.Decision = FundingDecision{
						Allowed: false,
						Tag:     TagWeeklyLimit,
						Reason: fmt.Sprintf("you have reached your weekly limit of %d class(es)",
							*plan.WeeklyLimit),
					}
				}
			}
		}
	}

	if !result.Eligible && len(class.AllowedPlanIDs) > 0 {
		public, err := s.store.ListPublicPlans(ctx, class.GymID)
		if err != nil {
			return nil, err
		}
		for _, p := range public {
			if planAllowed(class, p.ID) {
				result.EligiblePlans = append(result.EligiblePlans, p)
			}
		}
	}

	return result, nil
}

func (s *service) GetClassRoster(ctx context.Context, classID int, dateStr string) ([]RosterEntry, error) {
	return s.store.GetRoster(ctx, classID, dateStr)
}

func (s *service) GetMemberAttendanceHistory(ctx context.Context, userID, limit, offset int) ([]Attendance, error) {
	return s.store.ListMemberHistory(ctx, userID, limit, offset)
}

// GetWeeklyClassCount counts the member's bookings in the Monday-Sunday
// week containing dateStr.
func (s *service) GetWeeklyClassCount(ctx context.Context, userID int, dateStr string) (int, error) {
	day, err := gym.ParseDate(dateStr, time.UTC)
	if err != nil {
		return 0, err
	}
	weekStart, weekEnd := weekBounds(day)
	return s.store.CountWeeklyUsage(ctx, userID, weekStart, weekEnd)
}

func (s *service) GetWeeklyAttendanceCounts(ctx context.Context, gymID int, from, to string) ([]DayCount, error) {
	return s.store.GetAttendanceCountsByDay(ctx, gymID, from, to)
}

// weekBounds returns the Monday and Sunday of the week containing day,
// formatted as dates.
func weekBounds(day time.Time) (string, string) {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := day.AddDate(0, 0, 1-weekday)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(gym.DateLayout), sunday.Format(gym.DateLayout)
}
