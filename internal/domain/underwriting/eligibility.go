package underwriting

import (
	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/applicant"
)

// Fixed lending policy ratios.
var (
	MaxPrincipalToAnnualIncome    = decimal.RequireFromString("0.40")
	MaxInstallmentToMonthlyIncome = decimal.RequireFromString("0.30")
)

type Reason string

const (
	ReasonNone                Reason = ""
	ReasonIncomeRatioExceeded Reason = "INCOME_RATIO_EXCEEDED"
	ReasonEMIRatioExceeded    Reason = "EMI_RATIO_EXCEEDED"
	ReasonDuplicateActiveLoan Reason = "DUPLICATE_ACTIVE_LOAN"
)

// Message is the user-facing explanation of a rejection.
func (r Reason) Message() string {
	switch r {
	case ReasonIncomeRatioExceeded:
		return "requested amount exceeds 40% of annual income"
	case ReasonEMIRatioExceeded:
		return "monthly installment exceeds 30% of monthly income"
	case ReasonDuplicateActiveLoan:
		return "applicant already has an active loan or pending application"
	}
	return ""
}

// RejectionError carries a policy decline. It is a business outcome, not a
// failure of the engine.
type RejectionError struct {
	Reason Reason
}

func (e *RejectionError) Error() string { return "loan application rejected: " + e.Reason.Message() }

type Request struct {
	Profile             applicant.Profile
	Principal           decimal.Decimal
	TenureMonths        int
	AnnualRatePercent   decimal.Decimal
	HasActiveObligation bool
}

type Decision struct {
	Accepted           bool
	Reason             Reason
	Schedule           Schedule
	MonthlyGrossIncome decimal.Decimal
	DisposableIncome   decimal.Decimal
}

// Err returns a *RejectionError for a rejected decision and nil otherwise.
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}
	return &RejectionError{Reason: d.Reason}
}

// Evaluate applies the eligibility rules in order; the first failing rule
// decides the reason:
//
//  1. an existing active obligation → DUPLICATE_ACTIVE_LOAN
//  2. principal > 40% of annual income → INCOME_RATIO_EXCEEDED
//  3. installment > 30% of gross monthly income → EMI_RATIO_EXCEEDED
//
// The error is non-nil only when the terms cannot be amortized at all.
func Evaluate(req Request) (Decision, error) {
	sched, err := ComputeSchedule(req.Principal, req.AnnualRatePercent, req.TenureMonths)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		Schedule:           sched,
		MonthlyGrossIncome: req.Profile.MonthlyGrossIncome(),
		DisposableIncome:   req.Profile.DisposableIncome(),
	}

	switch {
	case req.HasActiveObligation:
		d.Reason = ReasonDuplicateActiveLoan
	case req.Principal.GreaterThan(req.Profile.AnnualIncome.Mul(MaxPrincipalToAnnualIncome)):
		d.Reason = ReasonIncomeRatioExceeded
	case sched.MonthlyInstallment.GreaterThan(d.MonthlyGrossIncome.Mul(MaxInstallmentToMonthlyIncome)):
		d.Reason = ReasonEMIRatioExceeded
	default:
		d.Accepted = true
	}
	return d, nil
}
