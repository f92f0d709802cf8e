package applicant

import (
	"context"
	"errors"

	"lending-engine/internal/domain/access"
	"lending-engine/internal/domain/applicant"
)

type Usecase struct{ repo applicant.Repository }

func NewUsecase(r applicant.Repository) *Usecase { return &Usecase{repo: r} }

type CreditScoreDTO struct {
	ApplicantID string `json:"applicantId"`
	CreditScore int    `json:"creditScore"`
	// HasHistory is false when the score is the default floor.
	HasHistory bool `json:"hasHistory"`
}

// CreditScore returns the caller's stored score, or DefaultCreditScore when
// no profile exists yet.
func (u *Usecase) CreditScore(ctx context.Context, p access.Principal) (*CreditScoreDTO, error) {
	if err := p.Require(access.CanApply); err != nil {
		return nil, err
	}
	prof, err := u.repo.GetByApplicantID(ctx, p.ID)
	switch {
	case errors.Is(err, applicant.ErrNotFound):
		return &CreditScoreDTO{ApplicantID: p.ID, CreditScore: applicant.DefaultCreditScore}, nil
	case err != nil:
		return nil, err
	}
	return &CreditScoreDTO{ApplicantID: p.ID, CreditScore: prof.CreditScore, HasHistory: true}, nil
}
