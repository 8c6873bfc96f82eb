package booking

import (
	"strings"

	"matbook/internal/gym"
	"matbook/internal/membership"
)

// FundingDecision is the outcome of resolving how a booking is paid for.
type FundingDecision struct {
	Allowed       bool        `json:"allowed"`
	Type          BookingType `json:"type,omitempty"`
	Cost          int         `json:"cost"`
	MatchedPlanID int         `json:"matched_plan_id,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Tag           string      `json:"tag,omitempty"`
}

func membershipStatusOK(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "active" || s == "trialing"
}

func planAllowed(class *gym.Class, planID int) bool {
	for _, id := range class.AllowedPlanIDs {
		if int(id) == planID {
			return true
		}
	}
	return false
}

// CanUserBook runs the eligibility gate: membership entitlement wins,
// then the credit balance, then free drop-in. Denials distinguish a
// membership that is out of good standing from a short credit balance.
func CanUserBook(class *gym.Class, memberships []membership.UserMembership, balance int) FundingDecision {
	holdsAllowedPlan := false
	for _, m := range memberships {
		if !planAllowed(class, m.PlanID) {
			continue
		}
		holdsAllowedPlan = true
		if membershipStatusOK(m.Status) {
			return FundingDecision{Allowed: true, Type: TypeMembership, Cost: 0, MatchedPlanID: m.PlanID}
		}
	}

	if class.CreditCost > 0 && balance >= class.CreditCost {
		return FundingDecision{Allowed: true, Type: TypeCredit, Cost: class.CreditCost}
	}

	if class.DropInEnabled && class.CreditCost == 0 {
		return FundingDecision{Allowed: true, Type: TypeDropIn, Cost: 0}
	}

	if holdsAllowedPlan {
		return FundingDecision{
			Allowed: false,
			Tag:     TagMembershipInactive,
			Reason:  "your membership is not in good standing for this class",
		}
	}
	if class.CreditCost > 0 {
		return FundingDecision{
			Allowed: false,
			Tag:     TagInsufficientFunds,
			Reason:  "not enough class credits to book this class",
		}
	}

	return FundingDecision{
		Allowed: false,
		Tag:     TagNotEligible,
		Reason:  "no membership or payment option covers this class",
	}
}

// ResolveFunding decides (bookingType, cost) for a new booking, honoring
// an explicit caller choice and staff force/waive flags before falling
// back to the eligibility gate.
func ResolveFunding(class *gym.Class, memberships []membership.UserMembership, balance int, opts BookOptions) (FundingDecision, error) {
	if opts.BookingType != "" {
		cost := 0
		if opts.BookingType == TypeCredit && !opts.WaiveCost {
			cost = class.CreditCost
		}
		return FundingDecision{Allowed: true, Type: opts.BookingType, Cost: cost}, nil
	}

	if opts.Force && opts.WaiveCost {
		return FundingDecision{Allowed: true, Type: TypeComp, Cost: 0}, nil
	}
	if opts.Force {
		return FundingDecision{Allowed: true, Type: TypeCredit, Cost: class.CreditCost}, nil
	}

	decision := CanUserBook(class, memberships, balance)
	if !decision.Allowed {
		if decision.Tag == TagInsufficientFunds {
			return decision, ErrInsufficientCredits
		}
		return decision, policyDenied(decision.Tag, decision.Reason)
	}

	return decision, nil
}
