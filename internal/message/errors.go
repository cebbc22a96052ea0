package message

import "errors"

// Sentinel errors returned while reading and decoding messages.
var (
	// ErrTooLarge indicates a frame over the size limit.
	ErrTooLarge = errors.New("message too large")

	// ErrMalformed indicates a frame that is not a valid JSON envelope.
	ErrMalformed = errors.New("malformed message")

	// ErrUnknownType indicates an envelope whose type is not a known request.
	ErrUnknownType = errors.New("unknown message type")

	// ErrInvalid indicates a well-formed request that fails validation.
	ErrInvalid = errors.New("invalid request")
)
