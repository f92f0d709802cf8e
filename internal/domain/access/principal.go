package access

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Role string

const (
	RoleApplicant   Role = "APPLICANT"
	RoleLoanOfficer Role = "LOAN_OFFICER"
	RoleRiskAnalyst Role = "RISK_ANALYST"
	RoleAdmin       Role = "ADMIN"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := grants[r]
	return r, ok
}

type Capability int

const (
	CanApply Capability = iota + 1
	CanReview
	CanOverride
	CanPostRepayment
	CanViewAnalytics
	CanViewAnyLoan
)

func (c Capability) String() string {
	switch c {
	case CanApply:
		return "apply"
	case CanReview:
		return "review"
	case CanOverride:
		return "override"
	case CanPostRepayment:
		return "post_repayment"
	case CanViewAnalytics:
		return "view_analytics"
	case CanViewAnyLoan:
		return "view_any_loan"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

var grants = map[Role][]Capability{
	RoleApplicant:   {CanApply},
	RoleLoanOfficer: {CanReview, CanPostRepayment, CanViewAnyLoan},
	RoleRiskAnalyst: {CanViewAnalytics, CanViewAnyLoan},
	RoleAdmin:       {CanReview, CanOverride, CanPostRepayment, CanViewAnalytics, CanViewAnyLoan},
}

// Principal is the authenticated caller. Use cases receive it as an explicit
// argument and check capabilities against it.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) Can(c Capability) bool {
	for _, g := range grants[p.Role] {
		if g == c {
			return true
		}
	}
	return false
}

// Require returns ErrUnauthenticated for an empty principal and ErrForbidden
// when the role lacks c.
func (p Principal) Require(c Capability) error {
	if p.ID == "" {
		return ErrUnauthenticated
	}
	if !p.Can(c) {
		return fmt.Errorf("%w: role %s cannot %s", ErrForbidden, p.Role, c)
	}
	return nil
}
