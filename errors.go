package wizard

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrProtocol indicates the server sent a payload that is not a valid
	// stream event: malformed JSON or an unknown type discriminator.
	ErrProtocol = errors.New("protocol error")

	// ErrTimeout indicates no connection was established before the
	// per-attempt deadline.
	ErrTimeout = errors.New("connection timeout")

	// ErrRetriesExhausted indicates every connection attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrClosed indicates an operation on a controller that was torn down.
	ErrClosed = errors.New("controller closed")

	// ErrUnknownDataType indicates a data type name with no registered config.
	ErrUnknownDataType = errors.New("unknown data type")
)
