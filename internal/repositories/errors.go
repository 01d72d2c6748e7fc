package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level not-found sentinel. Postgres
// implementations wrap gorm.ErrRecordNotFound so callers can test with
// IsNotFoundError without importing gorm.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
