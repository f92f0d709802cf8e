package http

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		LoanID string `json:"loanId" validate:"hex32"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{LoanID: strings.Repeat("a", 32)}); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	for _, s := range []string{
		"",
		strings.Repeat("A", 32),
		"deadbeef",
		strings.Repeat("g", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
	} {
		err := cv.Validate(P{LoanID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "loanId", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestDec2Validation_OnDecimals(t *testing.T) {
	type P struct {
		Amount decimal.Decimal `json:"amount" validate:"dec2"`
	}
	cv := NewValidator()

	for _, v := range []string{"1.29", "2.00", "0.9", "10000"} {
		if err := cv.Validate(P{Amount: decimal.RequireFromString(v)}); err != nil {
			t.Fatalf("expected dec2 OK for %v, got %v", v, err)
		}
	}
	for _, v := range []string{"1.234", "0.001", "99.999"} {
		err := cv.Validate(P{Amount: decimal.RequireFromString(v)})
		if err == nil {
			t.Fatalf("expected dec2 error for %v", v)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "amount", "2 decimal places") {
			t.Fatalf("expected dec2 message for %v, got %+v", v, fe)
		}
	}
}

func TestApplyRequestValidation(t *testing.T) {
	cv := NewValidator()
	good := func() applyReq {
		return applyReq{
			Amount:          decimal.NewFromInt(10000),
			TenureMonths:    12,
			EmploymentType:  "Self-Employed",
			AnnualIncome:    decimal.NewFromInt(120000),
			MonthlyExpenses: decimal.Zero,
		}
	}
	if err := cv.Validate(good()); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(r *applyReq)
		field  string
		msg    string
	}{
		{"zero amount", func(r *applyReq) { r.Amount = decimal.Zero }, "amount", "greater than 0"},
		{"negative amount", func(r *applyReq) { r.Amount = decimal.NewFromInt(-5) }, "amount", "greater than 0"},
		{"zero tenure", func(r *applyReq) { r.TenureMonths = 0 }, "tenureMonths", "greater than 0"},
		{"long tenure", func(r *applyReq) { r.TenureMonths = 361 }, "tenureMonths", "less than or equal to 360"},
		{"missing employment", func(r *applyReq) { r.EmploymentType = "" }, "employmentType", "is required"},
		{"unknown employment", func(r *applyReq) { r.EmploymentType = "ASTRONAUT" }, "employmentType", "must be one of"},
		{"negative expenses", func(r *applyReq) { r.MonthlyExpenses = decimal.NewFromInt(-1) }, "monthlyExpenses", "greater than or equal to 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := good()
			tc.mutate(&r)
			err := cv.Validate(r)
			if err == nil {
				t.Fatalf("expected error")
			}
			if fe := ToFieldErrors(err); !containsFieldMsg(fe, tc.field, tc.msg) {
				t.Fatalf("expected %s %q, got %+v", tc.field, tc.msg, fe)
			}
		})
	}
}

func TestRepaymentRequestValidation(t *testing.T) {
	cv := NewValidator()
	amt := decimal.RequireFromString("879.16")

	if err := cv.Validate(repaymentReq{Status: "ON_TIME"}); err != nil {
		t.Fatalf("amount is optional, got %v", err)
	}
	if err := cv.Validate(repaymentReq{Status: "LATE", Amount: &amt}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := cv.Validate(repaymentReq{Status: "EARLY"})
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if fe := ToFieldErrors(err); !containsFieldMsg(fe, "status", "must be one of ON_TIME LATE MISSED") {
		t.Fatalf("expected oneof message, got %+v", fe)
	}

	bad := decimal.RequireFromString("0.001")
	err = cv.Validate(repaymentReq{Status: "ON_TIME", Amount: &bad})
	if err == nil {
		t.Fatal("expected error for 3 decimal places")
	}
	if fe := ToFieldErrors(err); !containsFieldMsg(fe, "amount", "2 decimal places") {
		t.Fatalf("expected dec2 message, got %+v", fe)
	}
}

func TestLoanStatusValidation(t *testing.T) {
	cv := NewValidator()
	if err := cv.Validate(statusReq{Status: "UNDER_REVIEW"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	for _, s := range []string{"under_review", "PENDING", "DONE"} {
		err := cv.Validate(statusReq{Status: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "status", "not a loan status") {
			t.Fatalf("expected loanstatus message for %q, got %+v", s, fe)
		}
	}
}
