package booking

import (
	"fmt"
	"time"

	"matbook/internal/gym"
)

// Time & rule evaluation. Everything here is pure: the orchestrator may
// re-run it on transaction retry, so no function in this file touches
// state or the real clock.

// CheckOccurrence verifies the class actually materializes on the date:
// inside the recurrence, on a scheduled weekday (or the single-event
// date), and not struck from the calendar.
func CheckOccurrence(class *gym.Class, dateStr string, loc *time.Location) error {
	after, err := class.AfterRecurrenceEnd(dateStr, loc)
	if err != nil {
		return policyDenied(TagNotScheduled, err.Error())
	}
	if after {
		return policyDenied(TagRecurrenceEnded,
			fmt.Sprintf("this class ended on %s and no longer accepts bookings", *class.RecurrenceEndDate))
	}

	occurs, err := class.OccursOn(dateStr, loc)
	if err != nil {
		return policyDenied(TagNotScheduled, err.Error())
	}
	if !occurs {
		return policyDenied(TagNotScheduled,
			fmt.Sprintf("%s is not scheduled on %s", class.Name, dateStr))
	}

	return nil
}

// CheckBookingWindow rejects attempts made before the booking window
// opens. The window opens windowDays before the class start; the
// comparison is end-of-day inclusive, so a booking on the opening date
// itself is accepted. Staff and forced bookings bypass the window.
func CheckBookingWindow(start, now time.Time, windowDays *int, staffOrForce bool) error {
	if staffOrForce || windowDays == nil || *windowDays <= 0 {
		return nil
	}

	horizon := endOfDay(now.AddDate(0, 0, *windowDays))
	if horizon.Before(start) {
		opensAt := startOfDay(start).AddDate(0, 0, -*windowDays)
		return policyDenied(TagBookingWindow,
			fmt.Sprintf("booking opens on %s", opensAt.Format(gym.DateLayout)))
	}

	return nil
}

// LateBookingCutoff is the last moment a member may book the instance.
// Defaults to the class end when no explicit late-booking allowance is set.
func LateBookingCutoff(start time.Time, durationMinutes int, lateBookingMinutes *int) time.Time {
	allowance := durationMinutes
	if lateBookingMinutes != nil {
		allowance = *lateBookingMinutes
	}
	return start.Add(time.Duration(allowance) * time.Minute)
}

// CheckLateness rejects bookings past the late-booking cutoff. Staff and
// forced bookings bypass the cutoff (retroactive walk-in recording).
func CheckLateness(start time.Time, durationMinutes int, lateBookingMinutes *int, now time.Time, staffOrForce bool) error {
	if staffOrForce {
		return nil
	}

	cutoff := LateBookingCutoff(start, durationMinutes, lateBookingMinutes)
	if now.After(cutoff) {
		return policyDenied(TagTooLate, "it is too late to book this class")
	}

	return nil
}

// IsRetroactive reports whether the class instance has already finished.
func IsRetroactive(start time.Time, durationMinutes int, now time.Time) bool {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return now.After(end)
}

// IsSafeCancel decides whether a cancellation is refundable and fee-free:
// the member cancels at least cancelWindowHours before the start, or was
// only waitlisted, or staff overrides. A nil window means cancellation is
// safe any time before the start.
func IsSafeCancel(start, now time.Time, cancelWindowHours *int, wasWaitlisted, staffOverride bool) bool {
	if wasWaitlisted || staffOverride {
		return true
	}

	windowMinutes := 0
	if cancelWindowHours != nil {
		windowMinutes = *cancelWindowHours * 60
	}

	return start.Sub(now) >= time.Duration(windowMinutes)*time.Minute
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
