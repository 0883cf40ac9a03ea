package chord

import (
	"time"

	"chordring/internal/logger"
)

// Option configures a NodeService at construction time, in the
// teacher's functional-options style (internal/node/chord/option.go).
type Option func(*NodeService)

// WithLogger attaches a structured logger. Defaults to logger.NopLogger
// when omitted.
func WithLogger(l logger.Logger) Option {
	return func(n *NodeService) {
		n.lgr = l
	}
}

// WithFingerCount sets M, the number of fingers maintained (and the
// size of the identifier space, 2^M). Defaults to 64.
func WithFingerCount(m uint) Option {
	return func(n *NodeService) {
		n.fingerCount = m
	}
}

// WithSuccessorListSize sets how many successors are kept for fault
// tolerance, per the Open Question in spec §9 / §7. Defaults to 3.
func WithSuccessorListSize(size int) Option {
	return func(n *NodeService) {
		n.successorListSize = size
	}
}

// WithDialer sets the PeerDialer used to reach other nodes. Required
// for any deployment that talks over a real transport; tests may
// substitute a PeerDialer backed by in-memory mocks.
func WithDialer(d PeerDialer) Option {
	return func(n *NodeService) {
		n.dialer = d
	}
}

// WithRPCTimeout bounds every outbound RPC NodeService issues when the
// caller's context carries no deadline of its own. Defaults to 2s
// (spec §6, rpc_timeout).
func WithRPCTimeout(d time.Duration) Option {
	return func(n *NodeService) {
		n.rpcTimeout = d
	}
}
