// {{RIPER-5-Enhanced:
//   Action: "Added"
//   Task_ID: "Caller-Facing Error Kinds"
//   Timestamp: "2026-10-18T09:05:00Z"
//   Authoring_Role: "AR"
//   Analysis_Performed: "Collected every request outcome the API can report"
//   Principle_Applied: "Aether-Engineering-SOLID-S"
//   Quality_Check: "Each kind maps to exactly one HTTP status"
// }}

package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how the caller should react to it
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnprocessable
	KindConflict
	KindNotFound
	KindParseFailure
	KindConflictingFilters
)

var kindNames = map[Kind]string{
	KindInternal:           "internal",
	KindValidation:         "validation",
	KindUnprocessable:      "unprocessable",
	KindConflict:           "conflict",
	KindNotFound:           "not_found",
	KindParseFailure:       "parse_failure",
	KindConflictingFilters: "conflicting_filters",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus returns the status code a handler should answer with
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindParseFailure:
		return http.StatusBadRequest
	case KindUnprocessable, KindConflictingFilters:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a terminal per-request outcome
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing input
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Unprocessable reports input of the wrong type
func Unprocessable(message string, details ...string) *Error {
	return &Error{Kind: KindUnprocessable, Message: message, Details: details}
}

// Conflict reports a duplicate record
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound reports a lookup or delete miss
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ParseFailure reports a natural language query no filter could be derived from
func ParseFailure(message string) *Error {
	return &Error{Kind: KindParseFailure, Message: message}
}

// ConflictingFilters reports derived filters that contradict each other
func ConflictingFilters(message string, details ...string) *Error {
	return &Error{Kind: KindConflictingFilters, Message: message, Details: details}
}

// Internal wraps an unexpected failure
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
