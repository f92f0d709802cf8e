package uow

import (
	"context"

	"lending-engine/internal/domain/applicant"
	"lending-engine/internal/domain/audit"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/repayment"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans      loan.Repository
	Applicants applicant.Repository
	Repayments repayment.Repository
	Outbox     audit.OutboxRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}

// Locker serializes work on one key across goroutines (and, for shared
// implementations, across processes). The returned release func is safe to
// call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
