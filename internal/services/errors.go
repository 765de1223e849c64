package services

import (
	"errors"
	"fmt"

	"github.com/desertthunder/jsync/internal/shared"
)

// ErrorKind classifies a [ClientError] by the tracker's response status.
type ErrorKind int

const (
	KindUnexpectedResponse ErrorKind = iota
	KindInvalidQuery
	KindNotFound
	KindAuthFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidQuery:
		return "InvalidQuery"
	case KindNotFound:
		return "NotFound"
	case KindAuthFailure:
		return "AuthFailure"
	default:
		return "UnexpectedResponse"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidQuery:
		return shared.ErrInvalidQuery
	case KindNotFound:
		return shared.ErrNotFound
	case KindAuthFailure:
		return shared.ErrAuthFailed
	default:
		return shared.ErrUnexpectedResponse
	}
}

// ClientError is returned when the tracker answered with a non-success status or an unreadable body.
type ClientError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// Unwrap exposes the matching sentinel from [shared] so callers can use [errors.Is].
func (e *ClientError) Unwrap() error {
	return e.Kind.sentinel()
}

// CommunicationError wraps a transport failure: dial, timeout, or I/O while reading the body.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("Failed to communicate with JIRA API: %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() []error {
	return []error{shared.ErrCommunication, e.Err}
}

// classifyStatus maps a non-2xx status and its body to a [ClientError].
func classifyStatus(status int, body string) *ClientError {
	e := &ClientError{StatusCode: status, Body: body}
	switch {
	case status == 400:
		e.Kind = KindInvalidQuery
		e.Message = fmt.Sprintf("Invalid query: Status Code %d with body %s", status, body)
	case status == 404:
		e.Kind = KindNotFound
		e.Message = fmt.Sprintf("No issues found or endpoint does not exist: Status Code %d", status)
	case status == 401 || status == 403:
		e.Kind = KindAuthFailure
		e.Message = fmt.Sprintf("Authentication or permission issue: Status Code %d", status)
	default:
		e.Kind = KindUnexpectedResponse
		e.Message = fmt.Sprintf("Unexpected response from JIRA API: HTTP %d with body %s", status, body)
	}
	return e
}

// IsTransient reports whether err is a [CommunicationError]. Client errors are never transient.
func IsTransient(err error) bool {
	var ce *CommunicationError
	return errors.As(err, &ce)
}

// IsClientError reports whether err carries a [ClientError] of the given kind.
func IsClientError(err error, kind ErrorKind) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == kind
}
