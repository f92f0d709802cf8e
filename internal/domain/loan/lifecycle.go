package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// forward lists the edges allowed on the normal (system/officer) path.
var forward = map[Status][]Status{
	StatusApplied:     {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusActive},
	StatusActive:      {StatusClosed, StatusDefaulted},
}

// OverrideTargets are the only statuses an administrator may force.
var OverrideTargets = []Status{StatusApproved, StatusRejected, StatusDefaulted}

func CanTransition(from, to Status) bool {
	for _, s := range forward[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no forward edge.
func IsTerminal(s Status) bool { return len(forward[s]) == 0 }

func IsOverrideTarget(s Status) bool {
	for _, t := range OverrideTargets {
		if s == t {
			return true
		}
	}
	return false
}

// Transition moves l along a forward edge.
func (l *Loan) Transition(to Status, now time.Time) error {
	if !CanTransition(l.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, to)
	}
	l.enter(to, now)
	return nil
}

// Override forces l into an override target regardless of its current
// status, including its current status. It returns the previous status.
func (l *Loan) Override(to Status, now time.Time) (Status, error) {
	if !IsOverrideTarget(to) {
		return l.Status, fmt.Errorf("%w: got %q", ErrInvalidOverrideTarget, to)
	}
	old := l.Status
	l.enter(to, now)
	return old, nil
}

func (l *Loan) enter(to Status, now time.Time) {
	if to == StatusActive {
		if l.StartDate == nil {
			start := now
			l.StartDate = &start
		}
		if !l.RemainingAmount.Valid {
			l.RemainingAmount = decimal.NewNullDecimal(l.Principal)
		}
	}
	l.Status = to
	l.StatusUpdatedAt = now
}

type RepaymentOutcome string

const (
	OutcomeOnTime RepaymentOutcome = "ON_TIME"
	OutcomeLate   RepaymentOutcome = "LATE"
	OutcomeMissed RepaymentOutcome = "MISSED"
)

// PostRepayment applies one scheduled installment. Paid installments reduce
// the remaining balance by principalPart and close the loan once nothing is
// left; a missed installment only bumps the counter. Defaulted loans accept
// missed postings so the counter keeps accumulating.
func (l *Loan) PostRepayment(outcome RepaymentOutcome, principalPart decimal.Decimal, now time.Time) error {
	switch outcome {
	case OutcomeMissed:
		if l.Status != StatusActive && l.Status != StatusDefaulted {
			return fmt.Errorf("%w: %s", ErrNotRepayable, l.Status)
		}
		l.MissedInstallments++
		return nil
	case OutcomeOnTime, OutcomeLate:
	default:
		return fmt.Errorf("%w: unknown repayment status %q", ErrValidation, outcome)
	}

	if l.Status != StatusActive {
		return fmt.Errorf("%w: %s", ErrNotRepayable, l.Status)
	}
	if principalPart.IsNegative() {
		return fmt.Errorf("%w: negative principal component", ErrValidation)
	}
	remaining := l.RemainingAmount.Decimal
	if !l.RemainingAmount.Valid {
		remaining = l.Principal
	}
	remaining = remaining.Sub(principalPart)
	if !remaining.IsPositive() {
		remaining = decimal.Zero
	}
	l.RemainingAmount = decimal.NewNullDecimal(remaining)
	if remaining.IsZero() {
		return l.Transition(StatusClosed, now)
	}
	return nil
}
