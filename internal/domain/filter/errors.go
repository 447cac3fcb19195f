package filter

import "errors"

// Sentinel errors returned by Apply.
var (
	ErrUnknownDivision = errors.New("unknown division")
	ErrUnknownGender   = errors.New("unknown gender")
	ErrUnknownView     = errors.New("unknown view")
	ErrInvalidOffset   = errors.New("offset must not be negative")
	ErrInvalidSnapshot = errors.New("snapshot date must be YYYY-MM-DD")
)
