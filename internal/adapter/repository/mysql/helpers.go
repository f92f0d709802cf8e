package mysql

import (
	"errors"

	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to the domain sentinel so callers never
// depend on gorm.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
