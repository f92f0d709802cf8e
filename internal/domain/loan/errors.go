package loan

import "errors"

var (
	ErrNotFound              = errors.New("loan not found")
	ErrValidation            = errors.New("validation failed")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrInvalidOverrideTarget = errors.New("override target must be APPROVED, REJECTED or DEFAULTED")
	ErrNotRepayable          = errors.New("loan does not accept repayments in its current status")
)
