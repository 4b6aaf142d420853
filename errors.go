package dietz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPeriod is returned when a period does not end strictly after it starts.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidEpsilon is returned when epsilon is outside [0, 1].
	ErrInvalidEpsilon = errors.New("invalid epsilon")
	// ErrCurrencyMismatch is returned when decoded cash flows are not all in the expected currency.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

func validateEpsilon[T Float](epsilon T) error {
	// written so that NaN is rejected too.
	if !(epsilon >= 0 && epsilon <= 1) {
		return fmt.Errorf("epsilon %v not in [0, 1]: %w", epsilon, ErrInvalidEpsilon)
	}
	return nil
}
