package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"lending-engine/internal/domain/applicant"
	auditDomain "lending-engine/internal/domain/audit"
	loanDomain "lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	outbox := NewOutboxRepository(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		p := applicant.Default("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		if err := r.Applicants.Upsert(ctx, &p); err != nil {
			return err
		}
		l := makeLoan("LN-COMMIT", p.ApplicantID, loanDomain.StatusApplied)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if l.ID == 0 {
			t.Fatalf("loan auto ID not set")
		}
		return r.Outbox.Add(ctx, makeEntry(auditDomain.ActionLoanApplied))
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := loanRepo.GetByLoanID(ctx, "LN-COMMIT"); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	pending, err := outbox.ListUndelivered(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("outbox after commit: %v, %d entries", err, len(pending))
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	outbox := NewOutboxRepository(db)

	sentinel := errors.New("boom")

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, makeLoan("LN-ROLL", "BR-2", loanDomain.StatusApplied)); err != nil {
			return err
		}
		if err := r.Outbox.Add(ctx, makeEntry(auditDomain.ActionLoanApplied)); err != nil {
			return err
		}
		return sentinel // force rollback
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want sentinel, got %v", err)
	}

	// neither the loan nor its event survive
	if _, err := loanRepo.GetByLoanID(ctx, "LN-ROLL"); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
	if pending, _ := outbox.ListUndelivered(ctx, 10); len(pending) != 0 {
		t.Fatalf("expected empty outbox after rollback, got %d", len(pending))
	}
}

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	if err := loanRepo.Create(ctx, makeLoan("LN-TARGET", "BR-3", loanDomain.StatusApplied)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	err := guow.WithinLoanTx(ctx, "LN-TARGET", func(r uow.Repos, l *loanDomain.Loan) error {
		if l == nil || l.LoanID != "LN-TARGET" || l.Status != loanDomain.StatusApplied {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		if err := l.Transition(loanDomain.StatusUnderReview, time.Now().UTC()); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	got, err := loanRepo.GetByLoanID(ctx, "LN-TARGET")
	if err != nil {
		t.Fatalf("GetByLoanID post-commit: %v", err)
	}
	if got.Status != loanDomain.StatusUnderReview {
		t.Fatalf("loan status not updated, got=%s", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	if err := loanRepo.Create(ctx, makeLoan("LN-RB-TGT", "BR-4", loanDomain.StatusActive)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, "LN-RB-TGT", func(r uow.Repos, l *loanDomain.Loan) error {
		if _, err := l.Override(loanDomain.StatusDefaulted, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel
	})

	got, err := loanRepo.GetByLoanID(ctx, "LN-RB-TGT")
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.Status != loanDomain.StatusActive {
		t.Fatalf("status = %s, want ACTIVE after rollback", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_NotFound(t *testing.T) {
	db := openTestDB(t)
	guow := NewGormUoW(db)

	called := false
	err := guow.WithinLoanTx(context.Background(), "missing", func(uow.Repos, *loanDomain.Loan) error {
		called = true
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if called {
		t.Fatal("fn must not run for a missing loan")
	}
}
