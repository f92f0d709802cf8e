package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/audit"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/underwriting"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/infrastructure/metrics"
	"lending-engine/pkg/id"
)

const MaxTenureMonths = 360

type Deps struct {
	UoW     uow.UnitOfWork
	Reads   uow.Repos // non-transactional, for queries
	Locker  uow.Locker
	Rates   underwriting.RatePolicy
	Audit   audit.Deliverer
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type Usecase struct {
	uow     uow.UnitOfWork
	reads   uow.Repos
	locker  uow.Locker
	rates   underwriting.RatePolicy
	audit   audit.Deliverer
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	u := &Usecase{
		uow: d.UoW, reads: d.Reads, locker: d.Locker, rates: d.Rates,
		audit: d.Audit, log: d.Log, metrics: d.Metrics, now: d.Now,
	}
	if u.log == nil {
		u.log = slog.Default()
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	return u
}

func applyLockKey(applicantID string) string { return "loan-apply:" + applicantID }

// Apply underwrites an application for the calling applicant. A policy
// decline comes back as *underwriting.RejectionError and leaves no trace in
// storage.
func (u *Usecase) Apply(ctx context.Context, p access.Principal, in ApplyInput) (*ApplyResult, error) {
	if err := p.Require(access.CanApply); err != nil {
		return nil, err
	}
	emp, err := in.validate()
	if err != nil {
		return nil, err
	}

	release, err := u.locker.Lock(ctx, applyLockKey(p.ID))
	if err != nil {
		return nil, err
	}
	defer release()
	start := time.Now()

	var (
		res      *ApplyResult
		entry    *audit.OutboxEntry
		decision underwriting.Decision
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		profile, err := loadProfile(ctx, r.Applicants, p.ID)
		if err != nil {
			return err
		}
		profile.EmploymentType = emp
		profile.AnnualIncome = in.AnnualIncome
		profile.MonthlyExpenses = in.MonthlyExpenses

		hasActive := true
		if _, err := r.Loans.GetActiveByApplicantID(ctx, p.ID); errors.Is(err, loan.ErrNotFound) {
			hasActive = false
		} else if err != nil {
			return err
		}

		rate := u.rates.AnnualRatePercent(profile, in.Amount, in.TenureMonths)
		decision, err = underwriting.Evaluate(underwriting.Request{
			Profile:             profile,
			Principal:           in.Amount,
			TenureMonths:        in.TenureMonths,
			AnnualRatePercent:   rate,
			HasActiveObligation: hasActive,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", loan.ErrValidation, err)
		}
		if !decision.Accepted {
			return nil
		}

		if err := r.Applicants.Upsert(ctx, &profile); err != nil {
			return err
		}
		now := u.now()
		l := &loan.Loan{
			LoanID:             id.NewID32(),
			ApplicantID:        p.ID,
			Principal:          in.Amount,
			TenureMonths:       in.TenureMonths,
			EmploymentType:     emp,
			AnnualIncome:       in.AnnualIncome,
			MonthlyExpenses:    in.MonthlyExpenses,
			InterestRate:       rate,
			MonthlyInstallment: decision.Schedule.MonthlyInstallment,
			Status:             loan.StatusApplied,
			StatusUpdatedAt:    now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		entry = audit.NewEntry(p.ID, l.LoanID, audit.ActionLoanApplied,
			fmt.Sprintf("amount=%s tenure=%d rate=%s emi=%s", in.Amount, in.TenureMonths, rate, l.MonthlyInstallment), now).
			WithStatuses("", string(loan.StatusApplied))
		if err := r.Outbox.Add(ctx, entry); err != nil {
			return err
		}
		res = &ApplyResult{
			Loan:             ToDTO(l),
			TotalPayable:     decision.Schedule.TotalPayable,
			TotalInterest:    decision.Schedule.TotalInterest,
			DisposableIncome: decision.DisposableIncome.Round(2),
		}
		return nil
	})
	release()
	if err != nil {
		return nil, err
	}
	u.metrics.ObserveUnderwrite(time.Since(start))

	if !decision.Accepted {
		u.metrics.IncApplication(string(decision.Reason))
		u.log.Info("loan: application rejected", "applicant_id", p.ID, "reason", decision.Reason)
		return nil, decision.Err()
	}
	u.metrics.IncApplication("accepted")
	if res.AuditDegraded = audit.DeliverNow(ctx, u.audit, entry, u.log); res.AuditDegraded {
		u.metrics.IncAuditDegraded(string(audit.ActionLoanApplied))
	}
	u.log.Info("loan: application accepted", "applicant_id", p.ID, "loan_id", res.Loan.LoanID)
	return res, nil
}

// ChangeStatus moves a loan along a normal-flow edge on an officer's behalf.
func (u *Usecase) ChangeStatus(ctx context.Context, p access.Principal, loanID string, to loan.Status) (*StatusResult, error) {
	if err := p.Require(access.CanReview); err != nil {
		return nil, err
	}
	var (
		res   *StatusResult
		entry *audit.OutboxEntry
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		from := l.Status
		now := u.now()
		if err := l.Transition(to, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		entry = audit.NewEntry(p.ID, l.LoanID, audit.ActionLoanStatusChanged,
			fmt.Sprintf("%s -> %s by %s", from, to, p.Role), now).
			WithStatuses(string(from), string(to))
		if err := r.Outbox.Add(ctx, entry); err != nil {
			return err
		}
		res = &StatusResult{Loan: ToDTO(l)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.metrics.IncTransition(string(to))
	if res.AuditDegraded = audit.DeliverNow(ctx, u.audit, entry, u.log); res.AuditDegraded {
		u.metrics.IncAuditDegraded(string(audit.ActionLoanStatusChanged))
	}
	return res, nil
}

// ListMine returns the caller's loans, newest first.
func (u *Usecase) ListMine(ctx context.Context, p access.Principal) ([]LoanDTO, error) {
	if err := p.Require(access.CanApply); err != nil {
		return nil, err
	}
	loans, err := u.reads.Loans.ListByApplicantID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, ToDTO(&loans[i]))
	}
	return out, nil
}

// Get returns one loan. Applicants only see their own; someone else's loan
// is reported as not found.
func (u *Usecase) Get(ctx context.Context, p access.Principal, loanID string) (*LoanDTO, error) {
	if p.ID == "" {
		return nil, access.ErrUnauthenticated
	}
	l, err := u.reads.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.ApplicantID != p.ID && !p.Can(access.CanViewAnyLoan) {
		return nil, loan.ErrNotFound
	}
	dto := ToDTO(l)
	return &dto, nil
}

func loadProfile(ctx context.Context, repo applicant.Repository, applicantID string) (applicant.Profile, error) {
	prof, err := repo.GetByApplicantID(ctx, applicantID)
	if errors.Is(err, applicant.ErrNotFound) {
		return applicant.Default(applicantID), nil
	}
	if err != nil {
		return applicant.Profile{}, err
	}
	return *prof, nil
}

func (in ApplyInput) validate() (applicant.EmploymentType, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{loan.ErrValidation}, args...)...)
	}
	switch {
	case !in.Amount.IsPositive():
		return "", invalid("amount must be positive")
	case !isMoney(in.Amount):
		return "", invalid("amount has more than 2 decimal places")
	case in.TenureMonths <= 0 || in.TenureMonths > MaxTenureMonths:
		return "", invalid("tenureMonths must be between 1 and %d", MaxTenureMonths)
	case in.AnnualIncome.IsNegative():
		return "", invalid("annualIncome must not be negative")
	case in.MonthlyExpenses.IsNegative():
		return "", invalid("monthlyExpenses must not be negative")
	}
	emp, ok := applicant.ParseEmploymentType(in.EmploymentType)
	if !ok {
		return "", invalid("unknown employmentType %q", in.EmploymentType)
	}
	return emp, nil
}

func isMoney(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }
