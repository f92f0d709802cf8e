package applicantmock

import (
	"context"
	"errors"

	"lending-engine/internal/domain/applicant"
)

var _ applicant.Repository = (*Repo)(nil)

var ErrUnset = errors.New("applicantmock: method not set")

// Repo is a function-backed mock that satisfies applicant.Repository.
type Repo struct {
	GetByApplicantIDFn   func(ctx context.Context, applicantID string) (*applicant.Profile, error)
	UpsertFn             func(ctx context.Context, p *applicant.Profile) error
	AverageCreditScoreFn func(ctx context.Context) (float64, error)
}

func (m *Repo) GetByApplicantID(ctx context.Context, applicantID string) (*applicant.Profile, error) {
	if m.GetByApplicantIDFn != nil {
		return m.GetByApplicantIDFn(ctx, applicantID)
	}
	return nil, applicant.ErrNotFound
}

func (m *Repo) Upsert(ctx context.Context, p *applicant.Profile) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, p)
	}
	return nil
}

func (m *Repo) AverageCreditScore(ctx context.Context) (float64, error) {
	if m.AverageCreditScoreFn != nil {
		return m.AverageCreditScoreFn(ctx)
	}
	return 0, ErrUnset
}
