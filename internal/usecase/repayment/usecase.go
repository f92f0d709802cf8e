package repayment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/audit"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/repayment"
	"lending-engine/internal/domain/underwriting"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/infrastructure/metrics"
	loanuc "lending-engine/internal/usecase/loan"
	"lending-engine/pkg/id"
)

type Usecase struct {
	uow     uow.UnitOfWork
	audit   audit.Deliverer
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, d audit.Deliverer, log *slog.Logger, m *metrics.Metrics) *Usecase {
	if log == nil {
		log = slog.Default()
	}
	return &Usecase{uow: tx, audit: d, log: log, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

type PostInput struct {
	Status string
	// Amount defaults to the loan's monthly installment. Ignored for MISSED.
	Amount *decimal.Decimal
}

type RepaymentDTO struct {
	RepaymentID        string          `json:"repaymentId"`
	Amount             decimal.Decimal `json:"amount"`
	PrincipalComponent decimal.Decimal `json:"principalComponent"`
	InterestComponent  decimal.Decimal `json:"interestComponent"`
	Status             string          `json:"status"`
	PaidAt             time.Time       `json:"paidAt"`
}

type PostResult struct {
	Repayment     RepaymentDTO   `json:"repayment"`
	Loan          loanuc.LoanDTO `json:"loan"`
	AuditDegraded bool           `json:"auditDegraded"`
}

// Post records one installment outcome against a loan. A paid installment
// that clears the balance closes the loan.
func (u *Usecase) Post(ctx context.Context, p access.Principal, loanID string, in PostInput) (*PostResult, error) {
	if err := p.Require(access.CanPostRepayment); err != nil {
		return nil, err
	}
	outcome, err := parseOutcome(in.Status)
	if err != nil {
		return nil, err
	}
	if in.Amount != nil && (!in.Amount.IsPositive() || !in.Amount.Equal(in.Amount.Round(2))) {
		return nil, fmt.Errorf("%w: amount must be positive with at most 2 decimal places", loan.ErrValidation)
	}

	var (
		res   *PostResult
		entry *audit.OutboxEntry
	)
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		now := u.now()
		from := l.Status

		amount, principal, interest := decimal.Zero, decimal.Zero, decimal.Zero
		if outcome != loan.OutcomeMissed {
			amount = l.MonthlyInstallment
			if in.Amount != nil {
				amount = *in.Amount
			}
			remaining := l.Principal
			if l.RemainingAmount.Valid {
				remaining = l.RemainingAmount.Decimal
			}
			principal, interest = underwriting.PrincipalComponent(remaining, amount, l.InterestRate)
		}
		if err := l.PostRepayment(outcome, principal, now); err != nil {
			return err
		}

		rp := &repayment.Repayment{
			RepaymentID:        id.NewID32(),
			LoanID:             l.ID,
			Amount:             amount,
			PrincipalComponent: principal,
			InterestComponent:  interest,
			Status:             outcome,
			PaidAt:             now,
		}
		if err := r.Repayments.Create(ctx, rp); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		entry = audit.NewEntry(p.ID, l.LoanID, audit.ActionRepaymentPosted,
			fmt.Sprintf("%s amount=%s principal=%s remaining=%s", outcome, amount, principal, l.RemainingAmount.Decimal), now)
		if l.Status != from {
			entry.WithStatuses(string(from), string(l.Status))
		}
		if err := r.Outbox.Add(ctx, entry); err != nil {
			return err
		}
		res = &PostResult{
			Repayment: RepaymentDTO{
				RepaymentID:        rp.RepaymentID,
				Amount:             rp.Amount,
				PrincipalComponent: rp.PrincipalComponent,
				InterestComponent:  rp.InterestComponent,
				Status:             string(rp.Status),
				PaidAt:             rp.PaidAt,
			},
			Loan: loanuc.ToDTO(l),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.IncRepayment(string(outcome))
	if res.AuditDegraded = audit.DeliverNow(ctx, u.audit, entry, u.log); res.AuditDegraded {
		u.metrics.IncAuditDegraded(string(audit.ActionRepaymentPosted))
	}
	return res, nil
}

func parseOutcome(s string) (loan.RepaymentOutcome, error) {
	switch o := loan.RepaymentOutcome(s); o {
	case loan.OutcomeOnTime, loan.OutcomeLate, loan.OutcomeMissed:
		return o, nil
	}
	return "", fmt.Errorf("%w: status must be ON_TIME, LATE or MISSED", loan.ErrValidation)
}
