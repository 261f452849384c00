package httpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/guardrail/errors"
)

// transportError classifies a failure before any HTTP status was received.
func transportError(name string, err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(name).WithCause(err)
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Timeout() {
		return errors.Timeout(name).WithCause(err)
	}

	return errors.ConnectionFailed(name).WithCause(err)
}

// statusError classifies a non-2xx response. Statuses the retry engine
// treats as transient keep their retryable class; everything else fails
// fast.
func statusError(name string, resp *Response) *errors.AppError {
	switch resp.StatusCode {
	case http.StatusRequestTimeout:
		return errors.Timeout(name)
	case http.StatusTooManyRequests:
		return errors.RateLimited()
	}

	appErr := &errors.AppError{
		Message:    fmt.Sprintf("%s returned HTTP %d", name, resp.StatusCode),
		HTTPStatus: resp.StatusCode,
		Details:    map[string]any{"upstream": name},
	}
	if resp.StatusCode >= 500 {
		appErr.Code = errors.ErrCodeExternalService
		appErr.Retryable = true
	} else {
		appErr.Code = errors.ErrCodeInvalidInput
	}
	return appErr
}
