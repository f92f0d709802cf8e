package mysql

import (
	"context"
	"testing"
	"time"

	loanDomain "lending-engine/internal/domain/loan"
	repaymentDomain "lending-engine/internal/domain/repayment"
	"lending-engine/pkg/id"

	"github.com/shopspring/decimal"
)

func TestRepaymentCreateListCount(t *testing.T) {
	db := openTestDB(t)
	loans := NewLoanRepository(db)
	repo := NewRepaymentRepository(db)
	ctx := context.Background()

	l := makeLoan(id.NewID32(), id.NewID32(), loanDomain.StatusActive)
	if err := loans.Create(ctx, l); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, st := range []loanDomain.RepaymentOutcome{loanDomain.OutcomeOnTime, loanDomain.OutcomeLate, loanDomain.OutcomeOnTime, loanDomain.OutcomeMissed} {
		r := &repaymentDomain.Repayment{
			RepaymentID:        id.NewID32(),
			LoanID:             l.ID,
			Amount:             decimal.RequireFromString("879.16"),
			PrincipalComponent: decimal.RequireFromString("795.83"),
			InterestComponent:  decimal.RequireFromString("83.33"),
			Status:             st,
			PaidAt:             base.AddDate(0, i, 0),
		}
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListByLoan(ctx, l.ID)
	if err != nil {
		t.Fatalf("ListByLoan: %v", err)
	}
	if len(got) != 4 || got[0].Status != loanDomain.OutcomeOnTime || got[3].Status != loanDomain.OutcomeMissed {
		t.Fatalf("unexpected list: %+v", got)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[loanDomain.OutcomeOnTime] != 2 || counts[loanDomain.OutcomeLate] != 1 || counts[loanDomain.OutcomeMissed] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}
