package httperr

import (
	"errors"
	"fmt"
)

const (
	CodeAuthenticationFailed = "authentication_failed"
	CodePermissionDenied     = "permission_denied"
	CodeNotFound             = "not_found"
	CodeUnsupportedFormat    = "unsupported_format"
	CodeInvalidEncoding      = "invalid_encoding"
	CodeValidationFailed     = "validation_failed"
	CodeConflict             = "conflict"
	CodeStorageError         = "storage_error"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e BusinessError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return e.Code + ": " + e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// New returns a business error with a message safe to show to users.
func New(code, message string) error {
	return BusinessError{Code: code, Message: message}
}

func Newf(code, format string, args ...any) error {
	return BusinessError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause. The cause is never shown to users.
func Wrap(code, message string, err error) error {
	return BusinessError{Code: code, Message: message, Err: err}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf returns the business code of err, or CodeStorageError for
// anything unclassified.
func CodeOf(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeStorageError
}
