package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how the dashboard reacts to it.
type Kind string

const (
	KindAuthExpired           Kind = "AUTH_EXPIRED"
	KindForbidden             Kind = "FORBIDDEN"
	KindNotFound              Kind = "NOT_FOUND"
	KindValidationFailed      Kind = "VALIDATION_FAILED"
	KindBusinessRuleViolation Kind = "BUSINESS_RULE_VIOLATION"
	KindNetworkOrServer       Kind = "NETWORK_OR_SERVER_ERROR"
	KindConfiguration         Kind = "CONFIGURATION"
)

// Action is the follow-up offered to the user alongside an error.
type Action string

const (
	ActionNone   Action = ""
	ActionReload Action = "reload"
	ActionRetry  Action = "retry"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code        string            `json:"code"`
	Kind        Kind              `json:"kind"`
	Message     string            `json:"message"`
	Status      int               `json:"status"`
	Action      Action            `json:"action,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Err         error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors of the same code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, kind Kind, status int, message string) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: message, Action: actionFor(kind)}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, kind Kind, status int, message string) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: message, Action: actionFor(kind), Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrAuthExpired     = New("AUTH_EXPIRED", KindAuthExpired, http.StatusUnauthorized, "your session has expired, please sign in again")
	ErrUnauthorized    = New("UNAUTHORIZED", KindAuthExpired, http.StatusUnauthorized, "unauthorized")
	ErrForbidden       = New("FORBIDDEN", KindForbidden, http.StatusForbidden, "you do not have permission to perform this action")
	ErrNotFound        = New("NOT_FOUND", KindNotFound, http.StatusNotFound, "resource not found")
	ErrValidation      = New("VALIDATION_ERROR", KindValidationFailed, http.StatusBadRequest, "please check the highlighted fields")
	ErrBusinessRule    = New("BUSINESS_RULE_VIOLATION", KindBusinessRuleViolation, http.StatusConflict, "this action is not allowed")
	ErrTerminalState   = New("TERMINAL_STATE", KindBusinessRuleViolation, http.StatusConflict, "completed records can no longer be edited")
	ErrMutationPending = New("MUTATION_PENDING", KindBusinessRuleViolation, http.StatusConflict, "another change to this record is still in progress")
	ErrUpstream        = New("UPSTREAM_ERROR", KindNetworkOrServer, http.StatusBadGateway, "something went wrong, please try again later")
	ErrInternal        = New("INTERNAL_ERROR", KindNetworkOrServer, http.StatusInternalServerError, "internal server error")
	ErrConfiguration   = New("CONFIGURATION_ERROR", KindConfiguration, http.StatusInternalServerError, "invalid configuration")
	ErrCacheMiss       = New("CACHE_MISS", KindNotFound, http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Kind, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithFields returns a validation error carrying per-field messages.
func WithFields(fields map[string]string) *Error {
	clone := Clone(ErrValidation, "")
	clone.FieldErrors = fields
	return clone
}

// KindOf reports the kind of err, treating unknown errors as network/server failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

// FromStatus classifies an upstream HTTP failure. code is the backend's own error
// code when present; a BUSINESS_RULE_VIOLATION code wins over the status.
func FromStatus(status int, code, message string) *Error {
	var base *Error
	switch {
	case code == ErrBusinessRule.Code || code == ErrTerminalState.Code:
		base = ErrBusinessRule
	case status == http.StatusUnauthorized:
		base = ErrAuthExpired
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = ErrValidation
	case status == http.StatusConflict:
		base = ErrBusinessRule
	default:
		base = ErrUpstream
	}

	out := Clone(base, "")
	// Only rule violations and validation failures carry backend wording to the user.
	if message != "" && (base.Kind == KindBusinessRuleViolation || base.Kind == KindValidationFailed) {
		out.Message = message
	}
	out.Err = fmt.Errorf("upstream %d %s: %s", status, code, message)
	return out
}

// Transport classifies a failure that never produced an HTTP response.
func Transport(err error) *Error {
	return Wrap(err, ErrUpstream.Code, ErrUpstream.Kind, ErrUpstream.Status, ErrUpstream.Message)
}

func actionFor(kind Kind) Action {
	switch kind {
	case KindAuthExpired:
		return ActionReload
	case KindNetworkOrServer:
		return ActionRetry
	default:
		return ActionNone
	}
}
