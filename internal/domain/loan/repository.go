package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error

	// Lookups return ErrNotFound when no row matches.
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// GetActiveByApplicantID returns the newest loan of the applicant whose
	// status is an active obligation.
	GetActiveByApplicantID(ctx context.Context, applicantID string) (*Loan, error)

	ListByApplicantID(ctx context.Context, applicantID string) ([]Loan, error)

	// Portfolio aggregates
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	SumRemainingByStatus(ctx context.Context, status Status) (decimal.Decimal, error)
}
