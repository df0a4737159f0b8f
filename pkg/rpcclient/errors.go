package rpcclient

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionLost is returned for requests made after the connection
	// was lost or closed, the client is unusable after that.
	ErrConnectionLost = errors.New("connection lost")
	// ErrInvalidEndpoint is returned for non-websocket endpoints.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrNotInitialized is returned by cache getters before Init.
	ErrNotInitialized = errors.New("RPC client is not initialized")
	// ErrNoResult is returned for responses with neither result nor error.
	ErrNoResult = errors.New("no result returned")
	// ErrNotFound is returned for missing blocks and subscriptions.
	ErrNotFound = errors.New("not found")
)

// ConnectionError is returned by NewWS when the node can't be reached. It's
// fatal, the client doesn't redial.
type ConnectionError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
