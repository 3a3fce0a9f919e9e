// Package apperr defines the error kinds shared by the services and the
// client SDK. A kind travels in the "code" field of every JSON error body so
// callers never need to inspect message text.
package apperr

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailTaken         Kind = "email_taken"
	KindWeakPassword       Kind = "weak_password"
	KindRateLimited        Kind = "rate_limited"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindConfig             Kind = "config"
	KindUnavailable        Kind = "unavailable"
	KindInternal           Kind = "internal"
)

type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and a caller-facing message to err, recording a stack
// trace on the cause.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: errors.WithStack(err)}
}

// KindOf classifies err. Storage sentinels map to not_found, conflict and
// invalid_input; anything unclassified is internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return KindInvalidInput
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput, KindWeakPassword:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindEmailTaken, KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus is the fallback used when a response body carries no code.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindInvalidInput
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}

var userMessages = map[Kind]string{
	KindInvalidInput:       "Please check the highlighted fields and try again.",
	KindInvalidCredentials: "Incorrect email or password.",
	KindEmailTaken:         "An account with this email already exists.",
	KindWeakPassword:       "Password must be at least 6 characters long.",
	KindRateLimited:        "Too many attempts. Please wait a moment and try again.",
	KindUnauthorized:       "Please sign in to continue.",
	KindForbidden:          "You do not have permission to do that.",
	KindNotFound:           "We could not find what you were looking for.",
	KindConflict:           "This item was changed by someone else. Please reload.",
	KindConfig:             "The application is not configured correctly.",
	KindUnavailable:        "The service is temporarily unavailable.",
	KindInternal:           "Something went wrong. Please try again.",
}

// UserMessage returns end-user text for a kind.
func UserMessage(kind Kind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[KindInternal]
}
