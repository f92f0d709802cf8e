package underwriting

import (
	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/applicant"
)

// RatePolicy decides the annual interest rate (percent) offered for an
// application. The rate is an explicit input to the calculator.
type RatePolicy interface {
	AnnualRatePercent(p applicant.Profile, principal decimal.Decimal, tenureMonths int) decimal.Decimal
}

// FixedRate offers the same rate to every applicant.
type FixedRate decimal.Decimal

func (f FixedRate) AnnualRatePercent(applicant.Profile, decimal.Decimal, int) decimal.Decimal {
	return decimal.Decimal(f)
}
