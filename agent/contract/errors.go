package contract

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrModelInvoke  = errors.New("model invoke failed")
	ErrUnauthorized = errors.New("unauthorized")
)
