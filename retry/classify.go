package retry

import (
	stderrors "errors"
	"fmt"

	"github.com/kbukum/guardrail/errors"
)

// Connection-level error codes treated as transient by default.
const (
	CodeConnReset   = "ECONNRESET"
	CodeConnRefused = "ECONNREFUSED"
	CodeTimedOut    = "ETIMEDOUT"
	CodeBrokenPipe  = "EPIPE"
)

// DefaultRetryableCodes is the default string-code classification set.
var DefaultRetryableCodes = []string{
	CodeConnReset,
	CodeConnRefused,
	CodeTimedOut,
	CodeBrokenPipe,
	string(errors.ErrCodeServiceUnavailable),
	string(errors.ErrCodeConnectionFailed),
	string(errors.ErrCodeTimeout),
	string(errors.ErrCodeExternalService),
}

// DefaultRetryableStatuses is the default HTTP-status classification set.
var DefaultRetryableStatuses = []int{408, 429, 502, 503, 504}

// Coder exposes a string error code for classification.
type Coder interface {
	ErrorCode() string
}

// StatusCoder exposes an HTTP status code for classification.
// *errors.AppError satisfies this.
type StatusCoder interface {
	StatusCode() int
}

// timeouter matches the net.Error / timeout.Error convention.
type timeouter interface {
	Timeout() bool
}

// CodedError attaches a classification code to an arbitrary error.
type CodedError struct {
	Code string
	Err  error
}

// Error returns the string representation of the error.
func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

// Unwrap returns the wrapped error.
func (e *CodedError) Unwrap() error { return e.Err }

// ErrorCode returns the classification code.
func (e *CodedError) ErrorCode() string { return e.Code }

// WithCode wraps err with a classification code the retry engine understands.
func WithCode(code string, err error) *CodedError {
	return &CodedError{Code: code, Err: err}
}

// classification holds the normalized retryable sets.
type classification struct {
	codes    map[string]bool
	statuses map[int]bool
}

func newClassification(codes []string, statuses []int) classification {
	c := classification{
		codes:    make(map[string]bool, len(codes)),
		statuses: make(map[int]bool, len(statuses)),
	}
	for _, code := range codes {
		c.codes[code] = true
	}
	for _, status := range statuses {
		c.statuses[status] = true
	}
	return c
}

// retryable classifies err against the configured code and status sets.
// Errors carrying neither a known code nor a known status are not retried.
func (c classification) retryable(err error) bool {
	if err == nil {
		return false
	}

	var coder Coder
	if stderrors.As(err, &coder) && c.codes[coder.ErrorCode()] {
		return true
	}

	if appErr, ok := errors.AsAppError(err); ok {
		if c.codes[string(appErr.Code)] {
			return true
		}
		if appErr.HTTPStatus != 0 && c.statuses[appErr.HTTPStatus] {
			return true
		}
		return false
	}

	var sc StatusCoder
	if stderrors.As(err, &sc) && c.statuses[sc.StatusCode()] {
		return true
	}

	// Deadline-style failures classify as 408 if that status is retryable.
	var to timeouter
	if stderrors.As(err, &to) && to.Timeout() && c.statuses[408] {
		return true
	}

	return false
}
