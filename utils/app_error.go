package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures so handlers can pick a status and message.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindRecordNotFound
	KindSignatureMismatch
	KindRateLimited
	KindUpstream
	KindTimeout
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRecordNotFound:
		return "record_not_found"
	case KindSignatureMismatch:
		return "signature_mismatch"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// AppError is an error with a kind and a client-facing message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// StatusCode maps the kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindNotFound, KindSignatureMismatch:
		return http.StatusBadRequest
	case KindRecordNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Stack returns the captured stack trace of the wrapped error, if any.
func (e *AppError) Stack() string {
	type stackTracer interface{ StackTrace() errors.StackTrace }
	var st stackTracer
	if errors.As(e.Err, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

func newAppError(kind ErrorKind, msg string, err error) *AppError {
	if err != nil {
		err = errors.WithStack(err)
	}
	return &AppError{Kind: kind, Message: msg, Err: err}
}

func ValidationError(msg string) *AppError { return newAppError(KindValidation, msg, nil) }

// NotFoundError is a failed code check: a missing, mismatched or expired OTP.
func NotFoundError(msg string) *AppError { return newAppError(KindNotFound, msg, nil) }

// RecordNotFoundError is a lookup by identity that matched nothing.
func RecordNotFoundError(msg string) *AppError { return newAppError(KindRecordNotFound, msg, nil) }

func SignatureMismatchError(msg string) *AppError {
	return newAppError(KindSignatureMismatch, msg, nil)
}

func RateLimitedError(msg string) *AppError { return newAppError(KindRateLimited, msg, nil) }

func UpstreamError(msg string, err error) *AppError { return newAppError(KindUpstream, msg, err) }

func TimeoutError(msg string, err error) *AppError { return newAppError(KindTimeout, msg, err) }

func UnavailableError(err error) *AppError {
	return newAppError(KindUnavailable, "Database unavailable", err)
}

// InternalError surfaces err's message to the caller.
func InternalError(err error) *AppError { return newAppError(KindInternal, err.Error(), err) }

// AsAppError converts any error into an AppError, defaulting to KindInternal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalError(err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
