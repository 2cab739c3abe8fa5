package farm

import "errors"

var (
	ErrFarmNotFound  = errors.New("farm not found")
	ErrCraftNotFound = errors.New("craft not found")
)

// ValidationError reports input rejected before any state was touched.
type ValidationError struct {
	message string
}

func (e ValidationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return ValidationError{message: msg}
}

// IsValidation helps callers distinguish between user mistakes and storage failures.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
