package mysql

import (
	"context"

	loanDomain "lending-engine/internal/domain/loan"
	repaymentDomain "lending-engine/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository {
	return &RepaymentRepository{db: db}
}

func (r *RepaymentRepository) Create(ctx context.Context, p *repaymentDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *RepaymentRepository) ListByLoan(ctx context.Context, loanNumericID uint64) ([]repaymentDomain.Repayment, error) {
	var out []repaymentDomain.Repayment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("paid_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *RepaymentRepository) CountByStatus(ctx context.Context) (map[loanDomain.RepaymentOutcome]int64, error) {
	var rows []struct {
		Status loanDomain.RepaymentOutcome
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&repaymentDomain.Repayment{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[loanDomain.RepaymentOutcome]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
