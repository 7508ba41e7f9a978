// Package transport defines the minimal connection contract the session
// engine consumes (§6: "a connection object providing recv, send, and close
// semantics") and a gorilla/websocket realization of it. Framing, TLS, the
// HTTP upgrade and reconnection policy are all transport concerns the
// engine itself stays oblivious to.
package transport

import "context"

// Transport is one OCPP-J connection. Recv blocks until a complete message
// has arrived or the transport is closed; Send writes one complete message.
// Both return an error once the transport is closed, so the session engine
// can tell ordinary closure apart from a still-open connection.
type Transport interface {
	Recv(ctx context.Context) ([]byte, error)
	Send(ctx context.Context, data []byte) error
	Close() error
}

// ClosedError is returned by Recv/Send once the transport has been closed,
// either by the remote end or by a local Close call.
type ClosedError struct {
	Cause error
}

func (e *ClosedError) Error() string {
	if e.Cause != nil {
		return "transport closed: " + e.Cause.Error()
	}
	return "transport closed"
}

func (e *ClosedError) Unwrap() error { return e.Cause }
