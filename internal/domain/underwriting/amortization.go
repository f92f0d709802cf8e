package underwriting

import (
	"errors"

	"github.com/shopspring/decimal"
)

// calcScale is the number of decimal places carried by intermediate values
// (monthly rate, compound factor). Money is rounded to 2 places only at the
// end, half away from zero, which is half-up for non-negative amounts.
const calcScale int32 = 20

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidTenure    = errors.New("tenure must be a positive number of months")
	ErrInvalidRate      = errors.New("interest rate must not be negative")
)

var (
	one           = decimal.NewFromInt(1)
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// Installment is one row of the repayment table.
type Installment struct {
	Period      int             `json:"period"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Installment decimal.Decimal `json:"installment"`
	Balance     decimal.Decimal `json:"balance"`
}

type Schedule struct {
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalPayable       decimal.Decimal `json:"total_payable"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	Installments       []Installment   `json:"installments"`
}

// MonthlyRate converts a percent-per-annum rate to a monthly fraction:
// annual / 12 / 100.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(monthsPerYear.Mul(hundred), calcScale)
}

// ComputeSchedule applies the reducing-balance EMI formula
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// falling back to P / n when r is zero. TotalPayable is EMI * n. The table
// splits each installment into interest on the outstanding balance and
// principal; the last period absorbs rounding so the balance closes at zero.
func ComputeSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int) (Schedule, error) {
	if !principal.IsPositive() {
		return Schedule{}, ErrInvalidPrincipal
	}
	if tenureMonths <= 0 {
		return Schedule{}, ErrInvalidTenure
	}
	if annualRatePercent.IsNegative() {
		return Schedule{}, ErrInvalidRate
	}

	r := MonthlyRate(annualRatePercent)
	n := decimal.NewFromInt(int64(tenureMonths))
	emi := monthlyInstallment(principal, r, tenureMonths)

	rows := make([]Installment, 0, tenureMonths)
	balance := principal
	totalInterest := decimal.Zero
	for period := 1; period <= tenureMonths; period++ {
		interest := balance.Mul(r).Round(2)
		principalPart := emi.Sub(interest)
		if period == tenureMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}
		balance = balance.Sub(principalPart)
		totalInterest = totalInterest.Add(interest)
		rows = append(rows, Installment{
			Period:      period,
			Principal:   principalPart,
			Interest:    interest,
			Installment: principalPart.Add(interest),
			Balance:     balance,
		})
	}

	total := emi.Mul(n)
	return Schedule{
		MonthlyInstallment: emi,
		TotalPayable:       total,
		TotalInterest:      total.Sub(principal),
		Installments:       rows,
	}, nil
}

func monthlyInstallment(principal, r decimal.Decimal, tenureMonths int) decimal.Decimal {
	if r.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(tenureMonths)), 2)
	}
	f := compound(one.Add(r), tenureMonths)
	return principal.Mul(r).Mul(f).DivRound(f.Sub(one), 2)
}

// compound computes base^n by repeated multiplication at calcScale so the
// result does not depend on floating point.
func compound(base decimal.Decimal, n int) decimal.Decimal {
	f := one
	for i := 0; i < n; i++ {
		f = f.Mul(base).Round(calcScale)
	}
	return f
}

// PrincipalComponent is the share of one installment that reduces a loan's
// outstanding balance: the installment minus a month of interest on the
// balance, clamped to [0, remaining].
func PrincipalComponent(remaining, installment, annualRatePercent decimal.Decimal) (principal, interest decimal.Decimal) {
	interest = remaining.Mul(MonthlyRate(annualRatePercent)).Round(2)
	principal = installment.Sub(interest)
	if principal.GreaterThan(remaining) {
		principal = remaining
	}
	if principal.IsNegative() {
		principal = decimal.Zero
	}
	return principal, interest
}
