package core

import "errors"

// Error taxonomy shared by services, stores and the HTTP layer. Callers wrap
// these with fmt.Errorf("...: %w") and match with errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrUnrecognizedCategory = errors.New("unrecognized category")
	ErrStore                = errors.New("store failure")
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidMonth     = errors.New("invalid month")
)
