// Package apperr defines the error kinds every gateway operation reports.
//
// Callers match on kind with errors.Is:
//
//	if errors.Is(err, apperr.ErrNotConfigured) { ... }
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means live mode is selected but a credential or endpoint is missing.
	ErrNotConfigured = errors.New("not configured")
	// ErrDataUnavailable means the upstream was unreachable, failed, or returned nothing usable.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidArgument means the request was malformed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBrokerRejected means the brokerage refused the request.
	ErrBrokerRejected = errors.New("broker rejected")
	// ErrNotImplemented means the operation is deliberately unavailable.
	ErrNotImplemented = errors.New("not implemented")
)

// Error carries the failing operation and its subject (ticker, order id, ...) alongside the kind.
type Error struct {
	Op      string
	Subject string
	Kind    error
	Reason  string
	Err     error
}

// New builds an Error of the given kind. err may be nil.
func New(op, subject string, kind error, err error) *Error {
	return &Error{Op: op, Subject: subject, Kind: kind, Err: err}
}

// Newf builds an Error of the given kind with a formatted reason and no cause.
func Newf(op, subject string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Subject: subject, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Rejected builds a BrokerRejected error carrying the broker's reason verbatim.
func Rejected(op, subject, reason string) *Error {
	return &Error{Op: op, Subject: subject, Kind: ErrBrokerRejected, Reason: reason}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Subject != "" {
		msg += " " + e.Subject
	}
	msg += ": " + e.Kind.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

var kinds = []error{ErrNotConfigured, ErrDataUnavailable, ErrInvalidArgument, ErrBrokerRejected, ErrNotImplemented}

// KindOf returns the kind sentinel found in err's chain, or nil.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// ReasonOf returns the first non-empty Reason in err's chain.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Reason != "" {
		return e.Reason
	}
	return ""
}

// HTTPStatus maps an error kind to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrInvalidArgument:
		return http.StatusBadRequest
	case ErrBrokerRejected:
		return http.StatusUnprocessableEntity
	case ErrNotImplemented:
		return http.StatusNotImplemented
	case ErrDataUnavailable:
		return http.StatusBadGateway
	case ErrNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable name of err's kind.
func Code(err error) string {
	switch KindOf(err) {
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrBrokerRejected:
		return "broker_rejected"
	case ErrNotImplemented:
		return "not_implemented"
	case ErrDataUnavailable:
		return "data_unavailable"
	case ErrNotConfigured:
		return "not_configured"
	default:
		return "internal_server_error"
	}
}
