package services

import "errors"

// Failure kinds raised by the core services. HTTP translation happens in
// the fiber-facing methods; nothing below this line knows about status
// codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicateMembership = errors.New("player already in match")
	ErrValidation          = errors.New("invalid input")
)
