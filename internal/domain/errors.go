package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports missing or malformed caller input, detected
// before any external call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TransportError reports a schema- or transport-level failure of the Admin
// API (the top-level errors list of a GraphQL response, or an unreachable
// endpoint).
type TransportError struct {
	Messages []string
}

func (e *TransportError) Error() string {
	if len(e.Messages) == 0 {
		return "admin api transport error"
	}
	return strings.Join(e.Messages, ", ")
}

// UserError is a per-field rejection attached to an Admin API mutation
// payload.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// FieldError reports that the Admin API accepted the call but rejected
// specific fields.
type FieldError struct {
	UserErrors []UserError
}

func (e *FieldError) Error() string {
	parts := make([]string, 0, len(e.UserErrors))
	for _, ue := range e.UserErrors {
		if len(ue.Field) > 0 {
			parts = append(parts, strings.Join(ue.Field, ".")+": "+ue.Message)
		} else {
			parts = append(parts, ue.Message)
		}
	}
	return strings.Join(parts, ", ")
}
