package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeHyperError   = "HYPER_ERROR"
	ErrCodeHyperFatal   = "HYPER_FATAL"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeTimeout      = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapHyperError converts an error from pkg/hyper to a coded error.
// Not-ok results are not errors and never reach this function, except for
// storage downloads which report them as *hyper.NotOkError.
func WrapHyperError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var (
		fatal    *hyper.FatalError
		notOK    *hyper.NotOkError
		invalid  *hyper.InvalidParamError
		netErr   net.Error
		deadline = errors.Is(err, context.DeadlineExceeded)
	)
	switch {
	case errors.As(err, &fatal):
		coded = &CodedError{Code: ErrCodeHyperFatal, Message: fatal.Msg, Cause: err}
	case errors.As(err, &notOK):
		code := ErrCodeHyperError
		if notOK.Result.Status == 404 {
			code = ErrCodeNotFound
		}
		coded = &CodedError{Code: code, Message: notOK.Result.Msg, Cause: err}
	case errors.As(err, &invalid):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: invalid.Reason, Cause: err}
	case deadline, errors.As(err, &netErr) && netErr.Timeout():
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeHyperError, Message: "request failed", Cause: err}
	}

	slog.Warn("hyper error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
