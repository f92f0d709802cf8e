package repayment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lending-engine/internal/domain/loan"
)

// Table: repayments (append-only)
type Repayment struct {
	ID                 uint64                `gorm:"primaryKey;column:id" json:"-"`
	RepaymentID        string                `gorm:"size:32;not null;uniqueIndex:ux_repayments_repayment_id" json:"repayment_id"`
	LoanID             uint64                `gorm:"not null;index" json:"-"`
	Amount             decimal.Decimal       `gorm:"type:decimal(18,2);not null" json:"amount"`
	PrincipalComponent decimal.Decimal       `gorm:"type:decimal(18,2);not null" json:"principal_component"`
	InterestComponent  decimal.Decimal       `gorm:"type:decimal(18,2);not null" json:"interest_component"`
	Status             loan.RepaymentOutcome `gorm:"size:16;not null;index" json:"status"`
	PaidAt             time.Time             `gorm:"not null" json:"paid_at"`
	CreatedAt          time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

func (Repayment) TableName() string { return "repayments" }

type Repository interface {
	Create(ctx context.Context, r *Repayment) error
	ListByLoan(ctx context.Context, loanNumericID uint64) ([]Repayment, error)
	CountByStatus(ctx context.Context) (map[loan.RepaymentOutcome]int64, error)
}
