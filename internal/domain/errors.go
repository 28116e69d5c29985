package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyClosed = errors.New("shift already closed")
	ErrAuthorization = errors.New("not allowed")
	ErrNotFound      = errors.New("not found")

	// ErrStaleTotals is returned by a store when the sales aggregate passed to
	// CloseShift no longer matches the committed sales of the shift.
	ErrStaleTotals = fmt.Errorf("%w: shift sales changed during close", ErrConflict)
	// ErrShiftNotOpen rejects a sale booked against a shift that is closed,
	// missing or owned by someone else.
	ErrShiftNotOpen = fmt.Errorf("%w: shift is not open", ErrConflict)
)
