package booking

import (
	"errors"

	"matbook/internal/credit"
)

var (
	ErrClassNotFound    = errors.New("class not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyBooked    = errors.New("member already has an active booking for this class")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrInsufficientCredits is the ledger's sentinel, re-exported so a
	// short balance surfaces the same whether the funding gate or the
	// debit itself catches it.
	ErrInsufficientCredits = credit.ErrInsufficientCredits
)

// Policy denial tags, used by the UI to branch on the kind of refusal.
const (
	TagBookingWindow      = "booking_window"
	TagTooLate            = "too_late"
	TagRecurrenceEnded    = "recurrence_ended"
	TagNotScheduled       = "not_scheduled"
	TagWeeklyLimit        = "weekly_limit"
	TagMembershipInactive = "membership_inactive"
	TagInsufficientFunds  = "insufficient_credits"
	TagNotEligible        = "not_eligible"
)

// PolicyError is an expected, user-facing denial. The Reason is shown to
// the member verbatim; the Tag lets callers branch without string matching.
type PolicyError struct {
	Tag    string
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

func policyDenied(tag, reason string) *PolicyError {
	return &PolicyError{Tag: tag, Reason: reason}
}
