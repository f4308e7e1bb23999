package service

import (
	"fmt"

	apperrors "medscan/internal/errors"
)

// persistenceError tags a store failure with ErrPersistence while keeping the cause.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrPersistence, err)
}
