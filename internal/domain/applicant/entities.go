package applicant

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("applicant profile not found")

// DefaultCreditScore is the floor score assigned to an applicant with no
// credit history. It is fixed lending policy: a missing history never blocks
// an application.
const DefaultCreditScore = 300

const (
	MinCreditScore = 300
	MaxCreditScore = 900
)

type EmploymentType string

const (
	EmploymentSalaried     EmploymentType = "SALARIED"
	EmploymentSelfEmployed EmploymentType = "SELF_EMPLOYED"
	EmploymentUnemployed   EmploymentType = "UNEMPLOYED"
	EmploymentStudent      EmploymentType = "STUDENT"
	EmploymentRetired      EmploymentType = "RETIRED"
)

// ParseEmploymentType normalises "Self-Employed", "self employed" and
// "SELF_EMPLOYED" to the same value.
func ParseEmploymentType(s string) (EmploymentType, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch t := EmploymentType(norm); t {
	case EmploymentSalaried, EmploymentSelfEmployed, EmploymentUnemployed, EmploymentStudent, EmploymentRetired:
		return t, true
	}
	return "", false
}

// Table: applicant_profiles
type Profile struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	ApplicantID     string          `gorm:"size:32;not null;uniqueIndex:ux_applicant_profiles_applicant_id" json:"applicant_id"`
	EmploymentType  EmploymentType  `gorm:"size:16;not null" json:"employment_type"`
	AnnualIncome    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"annual_income"`
	MonthlyExpenses decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"monthly_expenses"`
	CreditScore     int             `gorm:"not null;default:300" json:"credit_score"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "applicant_profiles" }

// Default is the profile used when an applicant has never stored one.
func Default(applicantID string) Profile {
	return Profile{
		ApplicantID:     applicantID,
		EmploymentType:  EmploymentUnemployed,
		AnnualIncome:    decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		CreditScore:     DefaultCreditScore,
	}
}

// MonthlyGrossIncome is annual income divided by twelve, unrounded.
func (p Profile) MonthlyGrossIncome() decimal.Decimal {
	return p.AnnualIncome.Div(decimal.NewFromInt(12))
}

// DisposableIncome is monthly gross income minus monthly expenses. It can be
// negative.
func (p Profile) DisposableIncome() decimal.Decimal {
	return p.MonthlyGrossIncome().Sub(p.MonthlyExpenses)
}
