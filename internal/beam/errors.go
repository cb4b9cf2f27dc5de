package beam

import "errors"

var (
	// ErrConfig reports an invalid decoder configuration.
	ErrConfig = errors.New("invalid beam configuration")
	// ErrExhausted reports a push into a top set after Extract without
	// an intervening Reset.
	ErrExhausted = errors.New("top set exhausted")
)
