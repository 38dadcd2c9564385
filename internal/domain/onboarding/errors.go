package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("onboarding record not found")
	ErrDuplicateRecord = errors.New("onboarding record already exists")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}
