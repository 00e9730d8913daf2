package checkout

import "errors"

var (
	ErrIllegalTransition = errors.New("illegal checkout stage transition")
	ErrSubmitInFlight    = errors.New("order submission already in progress")
	ErrOrderWithoutID    = errors.New("order was created without a usable identifier")
	ErrUnknownCarrier    = errors.New("no shipping option for that carrier")
)

// ValidationError is locally detected malformed input: a missing checkout
// selection or an incomplete address form. Nothing was sent to the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
