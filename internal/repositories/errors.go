package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup by id matches no row
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict is returned when a conditional status update matched no row
	// because the row exists in a different status
	ErrStatusConflict = errors.New("status conflict")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
