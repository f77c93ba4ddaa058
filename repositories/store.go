package repositories

import (
	stderrors "errors"
	"fmt"

	"pairchat/errors"
)

// storeErr keeps domain sentinels intact and folds every other storage
// failure into ErrUnavailable so callers know it is retryable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		errors.ErrNotFound,
		errors.ErrForbidden,
		errors.ErrConflict,
		errors.ErrInvalidContent,
		errors.ErrSamePair,
		errors.ErrUserAlreadyExists,
		errors.ErrAuthFailure,
	} {
		if stderrors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", errors.ErrUnavailable, err)
}
