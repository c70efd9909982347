package catalog

import (
	"errors"
	"fmt"
)

// Typed failure kinds returned by the catalog services. Callers branch with
// errors.Is; no operation returns an untyped failure.
var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound indicates the referenced video, subscription or account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the acting account is not the resource owner.
	ErrForbidden = errors.New("forbidden")
	// ErrStorage indicates a document-store or media-store operation failed.
	ErrStorage = errors.New("storage failure")
)

func validationFailure(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
