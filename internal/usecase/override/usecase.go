package override

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/audit"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/infrastructure/metrics"
	loanuc "lending-engine/internal/usecase/loan"
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

type Result struct {
	Loan          loanuc.LoanDTO `json:"loan"`
	OldStatus     string         `json:"oldStatus"`
	NewStatus     string         `json:"newStatus"`
	AuditDegraded bool           `json:"auditDegraded"`
}

// OverrideStatus forces a loan into APPROVED, REJECTED or DEFAULTED from any
// status. Every successful call records exactly one LOAN_STATUS_OVERRIDE
// event, even when the loan already had the target status. A missing loan is
// reported as NotFound before the target is checked.
func (u *Usecase) OverrideStatus(ctx context.Context, p access.Principal, loanID string, to loan.Status) (*Result, error) {
	if err := p.Require(access.CanOverride); err != nil {
		return nil, err
	}

	var (
		res   *Result
		entry *audit.OutboxEntry
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		now := u.now()
		from, err := l.Override(to, now)
		if err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		entry = audit.NewEntry(p.ID, l.LoanID, audit.ActionLoanStatusOverride,
			fmt.Sprintf("Admin override: %s -> %s", from, to), now).
			WithStatuses(string(from), string(to))
		if err := r.Outbox.Add(ctx, entry); err != nil {
			return err
		}
		res = &Result{Loan: loanuc.ToDTO(l), OldStatus: string(from), NewStatus: string(to)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.IncOverride(string(to))
	u.log.Info("loan: status overridden", "loan_id", loanID, "admin_id", p.ID, "from", res.OldStatus, "to", res.NewStatus)
	if res.AuditDegraded = audit.DeliverNow(ctx, u.audit, entry, u.log); res.AuditDegraded {
		u.metrics.IncAuditDegraded(string(audit.ActionLoanStatusOverride))
	}
	return res, nil
}
