package mysql

import (
	"context"
	"database/sql"

	applicantDomain "lending-engine/internal/domain/applicant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicantRepository struct{ db *gorm.DB }

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

func (r *ApplicantRepository) GetByApplicantID(ctx context.Context, applicantID string) (*applicantDomain.Profile, error) {
	var out applicantDomain.Profile
	if err := r.db.WithContext(ctx).Where("applicant_id = ?", applicantID).First(&out).Error; err != nil {
		return nil, notFound(err, applicantDomain.ErrNotFound)
	}
	return &out, nil
}

// Upsert keys on applicant_id; the stored credit score is left alone on update.
func (r *ApplicantRepository) Upsert(ctx context.Context, p *applicantDomain.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "applicant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"employment_type", "annual_income", "monthly_expenses", "updated_at"}),
		}).
		Create(p).Error
}

func (r *ApplicantRepository) AverageCreditScore(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&applicantDomain.Profile{}).
		Select("AVG(credit_score)").
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}
