package usecase

import (
	"errors"

	"crm-chat/pkg/apperrors"
)

// storeErr classifies repository failures. Typed domain errors pass through
// untouched; anything else means the durable store misbehaved and surfaces as
// UNAVAILABLE. The caller owns retry; a failed append is never replayed here
// because appends are not idempotent.
func storeErr(err error) error {
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return err
	}
	return apperrors.ErrStoreUnavailable(err)
}
