package repaymentmock

import (
	"context"
	"errors"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/repayment"
)

var _ repayment.Repository = (*Repo)(nil)

var ErrUnset = errors.New("repaymentmock: method not set")

// Repo is a function-backed mock that satisfies repayment.Repository.
type Repo struct {
	CreateFn        func(ctx context.Context, r *repayment.Repayment) error
	ListByLoanFn    func(ctx context.Context, loanNumericID uint64) ([]repayment.Repayment, error)
	CountByStatusFn func(ctx context.Context) (map[loan.RepaymentOutcome]int64, error)
}

func (m *Repo) Create(ctx context.Context, r *repayment.Repayment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanNumericID uint64) ([]repayment.Repayment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanNumericID)
	}
	return nil, ErrUnset
}

func (m *Repo) CountByStatus(ctx context.Context) (map[loan.RepaymentOutcome]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, ErrUnset
}
