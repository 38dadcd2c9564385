package accounts

import "errors"

var (
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("email already registered")
	ErrInvalidRole = errors.New("unknown role")
)
