package chord

import (
	"context"
	"errors"
	"fmt"
)

// PeerClient is the abstract capability NodeService uses to invoke
// operations on a remote peer, one instance per addressed node. The
// concrete binding to bytes on a socket (internal/transport/grpcpeer,
// or the in-process dispatcher in local.go for tests) is an integrator
// concern — the engine only depends on this interface, grounded on the
// Rust original's `trait Client` (original_source/libs/chord/src/client.rs).
//
// All methods may suspend and are safe to call again immediately after
// any error.
type PeerClient interface {
	FindSuccessor(ctx context.Context, id uint64) (NodeHandle, error)
	Successor(ctx context.Context) (NodeHandle, error)
	Predecessor(ctx context.Context) (NodeHandle, bool, error)
	SuccessorList(ctx context.Context) ([]NodeHandle, error)
	Notify(ctx context.Context, candidate NodeHandle) error
	Ping(ctx context.Context) error
}

// PeerDialer resolves a NodeHandle's endpoint to a usable PeerClient.
// NodeService holds one of these rather than long-lived clients, so
// connection lifecycle (pooling, reconnect) is entirely the dialer's
// concern.
type PeerDialer interface {
	Dial(endpoint string) (PeerClient, error)
}

// ClientError is returned by PeerClient implementations.
type ClientError struct {
	kind ClientErrorKind
	peer NodeHandle
	msg  string
	err  error
}

// ClientErrorKind distinguishes a confirmed-unreachable peer from any
// other transient failure (spec §4.4, §7).
type ClientErrorKind int

const (
	// ClientErrorUnexpected is any failure other than a confirmed
	// connection failure — treated as transient.
	ClientErrorUnexpected ClientErrorKind = iota
	// ClientErrorConnectionFailed distinctly signals an unreachable
	// peer. Only check_predecessor treats this specially.
	ClientErrorConnectionFailed
)

func (e *ClientError) Error() string {
	if e.kind == ClientErrorConnectionFailed {
		return fmt.Sprintf("connection to node %s (%s) failed: %s", e.peer.Endpoint, fmtID(e.peer.ID), e.msg)
	}
	return e.msg
}

func (e *ClientError) Unwrap() error {
	return e.err
}

// Kind reports whether this is a ConnectionFailed or Unexpected error.
func (e *ClientError) Kind() ClientErrorKind {
	return e.kind
}

// Peer returns the peer associated with a ConnectionFailed error.
func (e *ClientError) Peer() NodeHandle {
	return e.peer
}

// IsConnectionFailed reports whether err is (or wraps) a ClientError of
// kind ConnectionFailed.
func IsConnectionFailed(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.kind == ClientErrorConnectionFailed
}

// NewConnectionFailedError builds a ClientError signaling that peer is
// unreachable.
func NewConnectionFailedError(peer NodeHandle, cause error) *ClientError {
	msg := "connection failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &ClientError{kind: ClientErrorConnectionFailed, peer: peer, msg: msg, err: cause}
}

// NewUnexpectedClientError builds a ClientError for any other failure.
func NewUnexpectedClientError(msg string, cause error) *ClientError {
	return &ClientError{kind: ClientErrorUnexpected, msg: msg, err: cause}
}

func fmtID(id uint64) string {
	return fmt.Sprintf("0x%016x", id)
}
