package emodulbridge

import "errors"

// Sentinel errors for bridge operations.
var (
	// ErrInvalidTopic indicates a command arrived on a malformed topic.
	ErrInvalidTopic = errors.New("bridge: invalid command topic")

	// ErrInvalidPayload indicates a command payload could not be decoded.
	ErrInvalidPayload = errors.New("bridge: invalid command payload")

	// ErrUnknownAction indicates a command action the bridge does not handle.
	ErrUnknownAction = errors.New("bridge: unknown command action")
)
