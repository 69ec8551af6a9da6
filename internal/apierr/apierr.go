package apierr

import "fmt"

// Codes used across handlers and services. GenerationDegraded has no code on
// purpose: a degraded generation never reaches the client as an error.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodeValidationError  = "validation_error"
	CodeUpstreamError    = "upstream_error"
	CodePersistenceError = "persistence_error"
	CodeNotFound         = "not_found"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
