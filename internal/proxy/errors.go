package proxy

import "fmt"

// ConnectError reports a downstream server that could not be started or
// failed the protocol handshake
type ConnectError struct {
	Server string
	Err    error
}

// Error implements the error interface
func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to downstream server %s: %v", e.Server, e.Err)
}

// Unwrap returns the underlying cause
func (e *ConnectError) Unwrap() error {
	return e.Err
}
