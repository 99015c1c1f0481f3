package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
)

// ServerError is a 5xx answer seen by the circuit breaker.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Body)
}

// downstreamError mirrors the httputil error envelope.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and maps it to
// an AppError, keeping the downstream code and message when the body uses
// the standard envelope.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	var env downstreamError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return mapDownstreamError(resp.StatusCode, env.Error.Code, env.Error.Message, service)
	}
	return mapDownstreamError(resp.StatusCode, "", string(body), service)
}

func mapDownstreamError(status int, code, message, service string) error {
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFoundMessage(qualified)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusGone:
		return apperrors.Gone(qualified)
	case status == http.StatusUnprocessableEntity:
		if code == "" {
			code = "UNPROCESSABLE"
		}
		return apperrors.Unprocessable(code, qualified)
	case status >= 500:
		return &apperrors.AppError{
			Code:    "UPSTREAM_UNAVAILABLE",
			Message: qualified,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}

// Unavailable maps a transport failure, an open breaker or a 5xx to a 503
// AppError that still unwraps to the cause.
func Unavailable(service string, err error) error {
	msg := service + " is unavailable"
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		msg = service + " is temporarily disabled after repeated failures"
	}
	return &apperrors.AppError{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: msg,
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", apperrors.ErrServiceUnavail, err),
	}
}

// IsClientError reports whether status is 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
