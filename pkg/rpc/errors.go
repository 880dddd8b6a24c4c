package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the transport.
var (
	// ErrNoBaseURL is returned by New when the backend URL is missing.
	ErrNoBaseURL = errors.New("backend base url is required")

	// ErrEmptyMethod is returned by Invoke when no method name is given.
	ErrEmptyMethod = errors.New("rpc method is required")
)

// ErrorClass represents a coarse classification of RPC failures.
type ErrorClass string

const (
	// ErrorClassClient represents errors caused by the request itself.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents backend failures.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents timeouts and connection failures.
	ErrorClassNetwork ErrorClass = "network"
)

// Error is a failed RPC. Message is the text the backend (or the transport)
// produced; it is shown to users after passing through FriendlyMessage.
type Error struct {
	Method  string
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc %s: %s: %s: %v", e.Method, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("rpc %s: %s: %s", e.Method, e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Class classifies the error for retry decisions and metrics.
func (e *Error) Class() ErrorClass {
	return classify(e.Code)
}

func classify(code Code) ErrorClass {
	switch code {
	case CodeDeadlineExceeded, CodeUnavailable, CodeCanceled:
		return ErrorClassNetwork
	case CodeInternal, CodeUnknown, CodeDataLoss, CodeUnimplemented, CodeAborted:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// CodeOf returns the status code carried by err, CodeOK for nil and
// CodeUnknown for errors that did not come from the transport.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	return CodeUnknown
}

// IsNotFound reports whether err is a NOT_FOUND rpc error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsRetryable reports whether retrying the call may succeed. Client errors
// are never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		return true
	}
	return rpcErr.Code != CodeCanceled && rpcErr.Class() != ErrorClassClient
}

// Message returns the user-facing message of err: the backend message for rpc
// errors, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) && strings.TrimSpace(rpcErr.Message) != "" {
		return rpcErr.Message
	}
	return err.Error()
}
