// Package fault defines the closed set of failure kinds the desk reacts to.
//
// Gateway responses are classified into Auth, NotFoundOrServer or Generic at
// the HTTP boundary; the desk itself produces Validation (before any call is
// made) and FallbackExhausted (when the scoped listing also failed). Nothing
// else crosses the boundary as an opaque value.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates failure categories.
type Kind int

const (
	// Generic is any gateway failure not covered by another kind,
	// including transport errors.
	Generic Kind = iota
	// Validation is a client-side precondition failure; no call was made.
	Validation
	// Auth is a 401 or 403 from the gateway.
	Auth
	// NotFoundOrServer is a 404 or 500; listings fall back once on it.
	NotFoundOrServer
	// FallbackExhausted means the primary and the fallback listing both failed.
	FallbackExhausted
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Auth:
		return "auth"
	case NotFoundOrServer:
		return "not_found_or_server"
	case FallbackExhausted:
		return "fallback_exhausted"
	default:
		return "generic"
	}
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s failure (status %d)", e.Op, e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindForStatus classifies an HTTP status code.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return Auth
	case http.StatusNotFound, http.StatusInternalServerError:
		return NotFoundOrServer
	default:
		return Generic
	}
}

// FromStatus builds a gateway error for a non-2xx response.
func FromStatus(op string, status int, message string) *Error {
	return &Error{Kind: KindForStatus(status), Op: op, Status: status, Message: message}
}

// Transport wraps a failure that produced no response at all.
func Transport(op string, err error) *Error {
	return &Error{Kind: Generic, Op: op, Err: err}
}

// Invalid builds a validation error.
func Invalid(op, message string) *Error {
	return &Error{Kind: Validation, Op: op, Message: message}
}

// KindOf returns the kind of err, or Generic for unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Generic
}

// MessageOf returns the server- or validator-provided message, if any.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Message != "" {
			return fe.Message
		}
		if fe.Err != nil {
			return fe.Err.Error()
		}
	}
	return ""
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
