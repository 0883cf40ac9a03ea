package chord

import "sync"

// NodeStore is the sole owner of a node's mutable ring state: its own
// identity, successor list, optional predecessor, and finger table. It
// enforces no cross-field invariants and performs no I/O — it is a
// passive record guarded by a lock, modeled on the teacher's
// RoutingTable (internal/node/chord/routingtable.go).
//
// Reads take a consistent snapshot under a shared-read lease; writes
// are serialized and are never held across an outbound RPC — callers
// take a snapshot, release, perform the RPC, then re-acquire to apply a
// small targeted mutation (spec §5).
type NodeStore struct {
	mu sync.RWMutex

	self          NodeHandle
	predecessor   *NodeHandle
	fingers       FingerTable
	successorList []NodeHandle
}

// NewNodeStore creates a store for self with all fingers and the
// successor list pointing at self — the correct state for a node that
// is alone on the ring (spec §3, invariant 4).
func NewNodeStore(self NodeHandle, m uint, successorListSize int) *NodeStore {
	fingers := NewFingerTable(self.ID, self, m)
	if successorListSize < 1 {
		successorListSize = 1
	}
	succList := make([]NodeHandle, successorListSize)
	for i := range succList {
		succList[i] = self
	}
	return &NodeStore{
		self:          self,
		fingers:       fingers,
		successorList: succList,
	}
}

// Self returns the node's own handle. Immutable for the store's
// lifetime, so it needs no lock.
func (s *NodeStore) Self() NodeHandle {
	return s.self
}

// Successor returns fingers[0].Peer, the node's immediate successor.
func (s *NodeStore) Successor() NodeHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingers.At(0).Peer
}

// Predecessor returns the current predecessor and whether it is set.
func (s *NodeStore) Predecessor() (NodeHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predecessor == nil {
		return NodeHandle{}, false
	}
	return *s.predecessor, true
}

// SetPredecessor sets the predecessor to the given handle.
func (s *NodeStore) SetPredecessor(handle NodeHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := handle
	s.predecessor = &h
}

// UnsetPredecessor clears the predecessor.
func (s *NodeStore) UnsetPredecessor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predecessor = nil
}

// SetSuccessor sets fingers[0].Peer and the head of the successor list
// in one locked step.
func (s *NodeStore) SetSuccessor(handle NodeHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingers.SetPeer(0, handle)
	if len(s.successorList) > 0 {
		s.successorList[0] = handle
	}
}

// SetSuccessorList replaces the successor list wholesale, truncating or
// padding to the configured size by repeating the last known-good
// entry, and keeps fingers[0] aliased to the new head.
func (s *NodeStore) SetSuccessorList(list []NodeHandle) {
	if len(list) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	size := len(s.successorList)
	last := list[len(list)-1]
	for i := 0; i < size; i++ {
		if i < len(list) {
			s.successorList[i] = list[i]
		} else {
			s.successorList[i] = last
		}
	}
	s.fingers.SetPeer(0, s.successorList[0])
}

// SuccessorList returns a copy of the successor list, head first.
func (s *NodeStore) SuccessorList() []NodeHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]NodeHandle, len(s.successorList))
	copy(out, s.successorList)
	return out
}

// SetFinger updates the cached peer of finger i (0-based).
func (s *NodeStore) SetFinger(i int, peer NodeHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingers.SetPeer(i, peer)
	if i == 0 && len(s.successorList) > 0 {
		s.successorList[0] = peer
	}
}

// Finger returns finger i (0-based).
func (s *NodeStore) Finger(i int) Finger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingers.At(i)
}

// Fingers returns a snapshot of the whole finger table.
func (s *NodeStore) Fingers() []Finger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingers.Snapshot()
}

// FingerCount returns M, the configured finger table size.
func (s *NodeStore) FingerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingers.Len()
}

// FillFingers points every finger and every successor-list entry at
// peer. No NodeService method calls it.
func (s *NodeStore) FillFingers(peer NodeHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingers.FillAll(peer)
	for i := range s.successorList {
		s.successorList[i] = peer
	}
}

// snapshot is a consistent point-in-time read of the fields find_successor
// and stabilize need together, taken under a single lock acquisition
// (spec §5: "self.id, current successor.id, and predecessor ... must
// all come from a single point in time").
type snapshot struct {
	self        NodeHandle
	successor   NodeHandle
	predecessor *NodeHandle
	fingers     []Finger
}

func (s *NodeStore) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		self:        s.self,
		successor:   s.fingers.At(0).Peer,
		predecessor: s.predecessor,
		fingers:     s.fingers.Snapshot(),
	}
}
