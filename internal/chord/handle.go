package chord

import "github.com/cespare/xxhash/v2"

// NodeHandle is a value reference to a node in the ring: its identifier
// and the network endpoint used to reach it. Handles are cheap to copy
// and freely shareable; nothing owns one uniquely.
type NodeHandle struct {
	ID       uint64
	Endpoint string
}

// Equal reports whether two handles name the same ring member. Per
// spec, handles compare equal iff their ids are equal.
func (h NodeHandle) Equal(other NodeHandle) bool {
	return h.ID == other.ID
}

// HashEndpoint derives a ring identifier from a node's textual endpoint
// (host:port) using a fast non-cryptographic 64-bit hash. This mirrors
// the Rust original's use of the seahash crate
// (original_source/libs/chord/src/lib.rs: Node::new) for the same
// purpose; xxhash is the closest ecosystem equivalent available here.
func HashEndpoint(endpoint string) uint64 {
	return xxhash.Sum64String(endpoint)
}

// NewHandle builds a NodeHandle for an endpoint, deriving the id by
// hashing it.
func NewHandle(endpoint string) NodeHandle {
	return NodeHandle{ID: HashEndpoint(endpoint), Endpoint: endpoint}
}

// NewHandleWithID builds a NodeHandle with an explicit id, bypassing the
// hash. The wire representation treats the id as authoritative rather
// than re-deriving it (spec §6), since a peer may have been constructed
// with an id chosen independently of its endpoint — tests rely on this
// to place nodes at known ring positions.
func NewHandleWithID(id uint64, endpoint string) NodeHandle {
	return NodeHandle{ID: id, Endpoint: endpoint}
}
