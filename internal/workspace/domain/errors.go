package domain

import "errors"

// Error taxonomy shared by the store and its callers. Callers wrap these with
// entity kind and id detail; the HTTP boundary matches with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrValidation         = errors.New("validation failed")
)
