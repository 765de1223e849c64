package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Tracker errors
	ErrInvalidQuery       = fmt.Errorf("invalid query")
	ErrNotFound           = fmt.Errorf("resource not found")
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response")
	ErrCommunication      = fmt.Errorf("failed to communicate with tracker")

	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRunNotFound        = fmt.Errorf("sync run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
