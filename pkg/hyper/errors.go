package hyper

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is.
var (
	// ErrFatal reports a backend fault (HTTP status >= 500).
	ErrFatal = errors.New("hyper: backend fault")
	// ErrInvalidParam reports a query parameter of an unsupported type.
	ErrInvalidParam = errors.New("hyper: invalid parameter")
	// ErrNotOK reports a not-ok response on a path that has no Result channel.
	ErrNotOK = errors.New("hyper: not ok")
	// ErrDecode reports a JSON response body that could not be decoded.
	ErrDecode = errors.New("hyper: decoding response")
)

// FatalError is returned instead of a Result when the backend answers with
// a status of 500 or above.
type FatalError struct {
	Status int
	Msg    string
}

func (e *FatalError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("hyper: backend fault (status %d)", e.Status)
	}
	return fmt.Sprintf("hyper: backend fault (status %d): %s", e.Status, e.Msg)
}

func (e *FatalError) Is(target error) bool { return target == ErrFatal }

// InvalidParamError reports a query parameter that cannot be encoded.
type InvalidParamError struct {
	Name   string
	Reason string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("hyper: invalid parameter %q: %s", e.Name, e.Reason)
}

func (e *InvalidParamError) Is(target error) bool { return target == ErrInvalidParam }

// NotOkError wraps a NotOkResult for operations that return a stream
// instead of a Result, such as storage downloads.
type NotOkError struct {
	Result *NotOkResult
}

func (e *NotOkError) Error() string {
	if e.Result.Msg == "" {
		return fmt.Sprintf("hyper: not ok (status %d)", e.Result.Status)
	}
	return fmt.Sprintf("hyper: not ok (status %d): %s", e.Result.Status, e.Result.Msg)
}

func (e *NotOkError) Is(target error) bool { return target == ErrNotOK }
