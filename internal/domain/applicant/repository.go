package applicant

import "context"

type Repository interface {
	// GetByApplicantID returns ErrNotFound when the applicant has no profile yet.
	GetByApplicantID(ctx context.Context, applicantID string) (*Profile, error)

	// Upsert inserts the profile or updates the row keyed by ApplicantID.
	Upsert(ctx context.Context, p *Profile) error

	// AverageCreditScore is 0 when no profiles exist.
	AverageCreditScore(ctx context.Context) (float64, error)
}
