package librarian

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"onmodulus/xervo/internal/domain"
)

// Kind classifies where a failed call broke down.
type Kind string

const (
	// KindTransport is a connection-level failure: DNS, refused, reset,
	// timeout. The request may or may not have reached the server.
	KindTransport Kind = "transport"

	// KindProtocol is a response that could not be parsed as JSON.
	KindProtocol Kind = "protocol"

	// KindAPI is a well-formed response carrying an error or errors field.
	KindAPI Kind = "api"

	// KindNotInitialized is a call made before an API endpoint was configured.
	KindNotInitialized Kind = "not_initialized"
)

// unexpectedResult is the single message every protocol error carries.
// Parser internals are deliberately not exposed to callers.
const unexpectedResult = "unexpected result from the API"

// Error is the failure half of every Transport and Client result.
type Error struct {
	Kind Kind

	// ID is the server-assigned error identifier, when the envelope has one.
	ID string

	// Message is the human-readable message. For API errors this is the
	// first entry of the errors array, or the error field.
	Message string

	// StatusCode is the HTTP status of the response, zero for transport errors.
	StatusCode int

	// Err is the underlying cause for transport and protocol errors.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("network error: %v", e.Err)
		}
		return "network error"
	case KindProtocol:
		return unexpectedResult
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Kind == KindProtocol {
		return nil
	}
	return e.Err
}

// Is matches other *Error values by kind (and ID when the target sets
// one), and maps recognisable API errors onto the domain sentinels.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.ID == "" || strings.EqualFold(e.ID, t.ID))
	}
	if e.Kind != KindAPI {
		return false
	}
	return errors.Is(e.classify(), target)
}

// classify converts server error IDs and messages to domain sentinels
// where recognisable.
func (e *Error) classify() error {
	id := strings.ToUpper(e.ID)
	msg := strings.ToLower(e.Message)
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403 ||
		strings.Contains(id, "AUTH") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "not authorized") ||
		strings.Contains(msg, "invalid token") ||
		strings.Contains(msg, "invalid login"):
		return domain.ErrUnauthorized
	case e.StatusCode == 404 ||
		strings.Contains(id, "NOT_FOUND") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist"):
		return domain.ErrNotFound
	case e.StatusCode == 409 ||
		strings.Contains(id, "CONFLICT") ||
		strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate"):
		return domain.ErrConflict
	}
	return nil
}

var (
	// ErrNotInitialized is returned by every call made on a client that
	// has no configured API endpoint.
	ErrNotInitialized = &Error{Kind: KindNotInitialized, Message: "API client not initialized: configure api-host and api-port first"}

	// ErrSocketTimeout is wrapped by raw transfers that stalled for longer
	// than the requested socket timeout.
	ErrSocketTimeout = errors.New("socket timeout")
)

// Message returns the text a user should see for err: the unwrapped API
// message for API errors, and err.Error() otherwise.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// Transient reports whether the failed call is worth retrying: transport
// failures (other than cancellation) and unparseable responses, which are
// typically proxies returning HTML during a blip. API errors never are.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTransport:
		return !errors.Is(e.Err, context.Canceled)
	case KindProtocol:
		return true
	}
	return false
}

// IsTransient reports whether err wraps a transient *Error.
func IsTransient(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Transient()
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func protocolError(status int, err error) *Error {
	return &Error{Kind: KindProtocol, StatusCode: status, Err: err}
}
