package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeUnavailable     ErrorCode = "UNAVAILABLE"
	CodeFailedPrecond   ErrorCode = "FAILED_PRECONDITION"
	CodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	CodeInternal        ErrorCode = "INTERNAL"
)

var (
	// ErrInvalidSlug is returned when a slug matches no entity in any source.
	ErrInvalidSlug = errors.New("invalid identifier")
	// ErrUninitialized is returned when loading through a zero-value wrapper.
	ErrUninitialized = errors.New("entity is not initialized")
	// ErrNoSuchAction is returned when a tool has no handler for an action.
	ErrNoSuchAction = errors.New("no action found with the given name")
	// ErrNoConnectedAccount is returned when a remote action has no
	// authenticated connection for its app.
	ErrNoConnectedAccount = errors.New("no connected account found")
	// ErrUnsupportedParam is returned when a parameter value has no defined
	// serialization.
	ErrUnsupportedParam = errors.New("unsupported parameter type")
	// ErrAPIKeyMissing is returned when the remote client is used without
	// an API key.
	ErrAPIKeyMissing = errors.New("api key is not set")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
		}
	}
	return E(code, op, "", err)
}

// CodeFrom maps an error to its code, if one is known.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrUnsupportedParam), errors.Is(err, ErrUninitialized):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrNoSuchAction):
		return CodeNotFound, true
	case errors.Is(err, ErrNoConnectedAccount):
		return CodeFailedPrecond, true
	case errors.Is(err, ErrAPIKeyMissing):
		return CodeUnauthenticated, true
	default:
		return "", false
	}
}

// ExecutionFailedError is a handler-reported domain failure. It carries a
// user-facing message and optional structured fields that the dispatcher
// folds into the normalized failure payload instead of re-raising.
type ExecutionFailedError struct {
	Message string
	Extra   map[string]any
}

func (e *ExecutionFailedError) Error() string {
	return e.Message
}

// ExecutionFailed builds an ExecutionFailedError with extra fields.
func ExecutionFailed(message string, extra map[string]any) *ExecutionFailedError {
	return &ExecutionFailedError{Message: message, Extra: extra}
}

// ExecutionFailedf builds an ExecutionFailedError without extra fields.
func ExecutionFailedf(format string, args ...any) *ExecutionFailedError {
	return &ExecutionFailedError{Message: fmt.Sprintf(format, args...)}
}
