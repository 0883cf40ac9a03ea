package chord

// Finger is one entry of a finger table: the start id it was computed
// for, and a cached handle to a successor of that start (which may be
// stale between fix_fingers rounds).
type Finger struct {
	Start uint64
	Peer  NodeHandle
}

// FingerTable is an ordered sequence of exactly M fingers, indexed
// 0..M-1 for i = 1..M. Entry 0 is authoritative for the node's
// immediate successor (store.Successor() aliases fingers[0].Peer).
type FingerTable struct {
	entries []Finger
}

// NewFingerTable builds the correct initial state for a freshly-joined
// node that has learned exactly one peer: every finger points at
// successor, and starts follow finger_start(selfID, i, m) for i = 1..m.
func NewFingerTable(selfID uint64, successor NodeHandle, m uint) FingerTable {
	entries := make([]Finger, m)
	for i := uint(0); i < m; i++ {
		entries[i] = Finger{
			Start: FingerStart(selfID, i+1, m),
			Peer:  successor,
		}
	}
	return FingerTable{entries: entries}
}

// Len returns M, the configured number of fingers.
func (t FingerTable) Len() int {
	return len(t.entries)
}

// At returns the finger at index i (0-based, corresponding to i+1 in
// the 1..M finger numbering).
func (t FingerTable) At(i int) Finger {
	return t.entries[i]
}

// SetPeer updates the cached peer of finger i, leaving Start untouched.
func (t *FingerTable) SetPeer(i int, peer NodeHandle) {
	t.entries[i].Peer = peer
}

// FillAll points every finger at the same peer, leaving every Start
// untouched. NodeStore.FillFingers is its caller; ring creation builds
// the all-self table through NewFingerTable instead, and Join changes
// only fingers[0].
func (t *FingerTable) FillAll(peer NodeHandle) {
	for i := range t.entries {
		t.entries[i].Peer = peer
	}
}

// Snapshot returns a copy of the finger entries, safe to read without
// holding the store's lock.
func (t FingerTable) Snapshot() []Finger {
	out := make([]Finger, len(t.entries))
	copy(out, t.entries)
	return out
}
