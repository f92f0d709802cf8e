package analytics

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/repayment"
)

type Usecase struct {
	loans      loan.Repository
	applicants applicant.Repository
	repayments repayment.Repository
}

func NewUsecase(l loan.Repository, a applicant.Repository, r repayment.Repository) *Usecase {
	return &Usecase{loans: l, applicants: a, repayments: r}
}

type Breakdown struct {
	Applied     int64 `json:"applied"`
	UnderReview int64 `json:"underReview"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Active      int64 `json:"active"`
	Closed      int64 `json:"closed"`
	Defaulted   int64 `json:"defaulted"`
}

// Rates are percentages rounded to 2 places.
type Dashboard struct {
	TotalLoans       int64           `json:"totalLoans"`
	ApprovalRate     decimal.Decimal `json:"approvalRate"`
	RejectionRate    decimal.Decimal `json:"rejectionRate"`
	DefaultRate      decimal.Decimal `json:"defaultRate"`
	AvgCreditScore   decimal.Decimal `json:"avgCreditScore"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	RecoveryRate     decimal.Decimal `json:"recoveryRate"`
	Breakdown        Breakdown       `json:"breakdown"`
}

// Dashboard summarizes the portfolio. Approval, rejection and default rates
// count loans currently in that status against all loans; the recovery rate
// is on-time repayments against all posted repayments.
func (u *Usecase) Dashboard(ctx context.Context, p access.Principal) (*Dashboard, error) {
	if err := p.Require(access.CanViewAnalytics); err != nil {
		return nil, err
	}

	var (
		byStatus    map[loan.Status]int64
		outstanding decimal.Decimal
		avgScore    float64
		repaid      map[loan.RepaymentOutcome]int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = u.loans.CountByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		outstanding, err = u.loans.SumRemainingByStatus(ctx, loan.StatusActive)
		return err
	})
	g.Go(func() (err error) {
		avgScore, err = u.applicants.AverageCreditScore(ctx)
		return err
	})
	g.Go(func() (err error) {
		repaid, err = u.repayments.CountByStatus(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total, repayments int64
	for _, n := range byStatus {
		total += n
	}
	for _, n := range repaid {
		repayments += n
	}

	return &Dashboard{
		TotalLoans:       total,
		ApprovalRate:     percent(byStatus[loan.StatusApproved], total),
		RejectionRate:    percent(byStatus[loan.StatusRejected], total),
		DefaultRate:      percent(byStatus[loan.StatusDefaulted], total),
		AvgCreditScore:   decimal.NewFromFloat(avgScore).Round(2),
		TotalOutstanding: outstanding.Round(2),
		RecoveryRate:     percent(repaid[loan.OutcomeOnTime], repayments),
		Breakdown: Breakdown{
			Applied:     byStatus[loan.StatusApplied],
			UnderReview: byStatus[loan.StatusUnderReview],
			Approved:    byStatus[loan.StatusApproved],
			Rejected:    byStatus[loan.StatusRejected],
			Active:      byStatus[loan.StatusActive],
			Closed:      byStatus[loan.StatusClosed],
			Defaulted:   byStatus[loan.StatusDefaulted],
		},
	}, nil
}

// percent is 0 for an empty denominator.
func percent(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part*100).DivRound(decimal.NewFromInt(whole), 2)
}
