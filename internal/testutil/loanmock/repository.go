package loanmock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	domain "lending-engine/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// ErrUnset is returned by lookups whose function field was left nil.
var ErrUnset = errors.New("loanmock: method not set")

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a no-op; reads default to ErrUnset.
type Repo struct {
	CreateFn                 func(ctx context.Context, l *domain.Loan) error
	SaveFn                   func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn            func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn   func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetActiveByApplicantIDFn func(ctx context.Context, applicantID string) (*domain.Loan, error)
	ListByApplicantIDFn      func(ctx context.Context, applicantID string) ([]domain.Loan, error)
	CountByStatusFn          func(ctx context.Context) (map[domain.Status]int64, error)
	SumRemainingByStatusFn   func(ctx context.Context, status domain.Status) (decimal.Decimal, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, ErrUnset
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, ErrUnset
}

func (m *Repo) GetActiveByApplicantID(ctx context.Context, applicantID string) (*domain.Loan, error) {
	if m.GetActiveByApplicantIDFn != nil {
		return m.GetActiveByApplicantIDFn(ctx, applicantID)
	}
	return nil, ErrUnset
}

func (m *Repo) ListByApplicantID(ctx context.Context, applicantID string) ([]domain.Loan, error) {
	if m.ListByApplicantIDFn != nil {
		return m.ListByApplicantIDFn(ctx, applicantID)
	}
	return nil, ErrUnset
}

func (m *Repo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, ErrUnset
}

func (m *Repo) SumRemainingByStatus(ctx context.Context, status domain.Status) (decimal.Decimal, error) {
	if m.SumRemainingByStatusFn != nil {
		return m.SumRemainingByStatusFn(ctx, status)
	}
	return decimal.Zero, ErrUnset
}
