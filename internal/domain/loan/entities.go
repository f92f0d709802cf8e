package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/applicant"
)

type Status string

const (
	StatusApplied     Status = "APPLIED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusActive      Status = "ACTIVE"
	StatusClosed      Status = "CLOSED"
	StatusDefaulted   Status = "DEFAULTED"
)

// AllStatuses in lifecycle order.
var AllStatuses = []Status{
	StatusApplied, StatusUnderReview, StatusApproved, StatusRejected,
	StatusActive, StatusClosed, StatusDefaulted,
}

// ActiveObligationStatuses are the statuses that keep an applicant from
// holding a second loan.
var ActiveObligationStatuses = []Status{StatusApplied, StatusUnderReview, StatusApproved, StatusActive}

func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Status) IsActiveObligation() bool {
	for _, st := range ActiveObligationStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Table: loans. Rows are never deleted; closed and defaulted loans stay for
// audit history.
type Loan struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID      string `gorm:"size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	ApplicantID string `gorm:"size:32;not null;index:idx_loans_applicant_status" json:"applicant_id"`

	Principal    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal"`
	TenureMonths int             `gorm:"not null" json:"tenure_months"`

	// income snapshot at application time
	EmploymentType  applicant.EmploymentType `gorm:"size:16;not null" json:"employment_type"`
	AnnualIncome    decimal.Decimal          `gorm:"type:decimal(18,2);not null" json:"annual_income"`
	MonthlyExpenses decimal.Decimal          `gorm:"type:decimal(18,2);not null" json:"monthly_expenses"`

	InterestRate       decimal.Decimal     `gorm:"type:decimal(6,2);not null" json:"interest_rate"`
	MonthlyInstallment decimal.Decimal     `gorm:"type:decimal(18,2);not null" json:"monthly_installment"`
	RemainingAmount    decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"remaining_amount"`
	MissedInstallments int                 `gorm:"not null;default:0" json:"missed_installments"`

	Status          Status     `gorm:"size:16;not null;index:idx_loans_applicant_status" json:"status"`
	StatusUpdatedAt time.Time  `json:"status_updated_at"`
	StartDate       *time.Time `json:"start_date"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }
