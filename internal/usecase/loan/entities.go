package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/loan"
)

type ApplyInput struct {
	Amount          decimal.Decimal
	TenureMonths    int
	EmploymentType  string
	AnnualIncome    decimal.Decimal
	MonthlyExpenses decimal.Decimal
}

type LoanDTO struct {
	LoanID             string           `json:"loanId"`
	ApplicantID        string           `json:"applicantId"`
	Amount             decimal.Decimal  `json:"amount"`
	TenureMonths       int              `json:"tenureMonths"`
	EmploymentType     string           `json:"employmentType"`
	AnnualIncome       decimal.Decimal  `json:"annualIncome"`
	MonthlyExpenses    decimal.Decimal  `json:"monthlyExpenses"`
	InterestRate       decimal.Decimal  `json:"interestRate"`
	MonthlyInstallment decimal.Decimal  `json:"monthlyInstallment"`
	RemainingAmount    *decimal.Decimal `json:"remainingAmount"`
	MissedInstallments int              `json:"missedInstallments"`
	Status             string           `json:"status"`
	StatusUpdatedAt    time.Time        `json:"statusUpdatedAt"`
	StartDate          *time.Time       `json:"startDate"`
	CreatedAt          time.Time        `json:"createdAt"`
}

type ApplyResult struct {
	Loan             LoanDTO         `json:"loan"`
	TotalPayable     decimal.Decimal `json:"totalPayable"`
	TotalInterest    decimal.Decimal `json:"totalInterest"`
	DisposableIncome decimal.Decimal `json:"disposableIncome"`
	// AuditDegraded is set when the LOAN_APPLIED event is committed but not
	// yet in the audit log; the relay delivers it later.
	AuditDegraded bool `json:"auditDegraded"`
}

type StatusResult struct {
	Loan          LoanDTO `json:"loan"`
	AuditDegraded bool    `json:"auditDegraded"`
}

// ToDTO is shared by the other loan-facing use cases.
func ToDTO(l *loan.Loan) LoanDTO {
	dto := LoanDTO{
		LoanID:             l.LoanID,
		ApplicantID:        l.ApplicantID,
		Amount:             l.Principal,
		TenureMonths:       l.TenureMonths,
		EmploymentType:     string(l.EmploymentType),
		AnnualIncome:       l.AnnualIncome,
		MonthlyExpenses:    l.MonthlyExpenses,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: l.MonthlyInstallment,
		MissedInstallments: l.MissedInstallments,
		Status:             string(l.Status),
		StatusUpdatedAt:    l.StatusUpdatedAt,
		StartDate:          l.StartDate,
		CreatedAt:          l.CreatedAt,
	}
	if l.RemainingAmount.Valid {
		r := l.RemainingAmount.Decimal
		dto.RemainingAmount = &r
	}
	return dto
}
