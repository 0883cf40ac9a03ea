package chord

import (
	"context"
	"fmt"
	"time"

	"chordring/internal/logger"
)

// NodeService is the protocol engine: it exposes find_successor, join,
// notify, stabilize, check_predecessor and fix_fingers, mutating a
// NodeStore and issuing outbound RPCs through a PeerDialer. Grounded on
// the teacher's Node (internal/node/chord/node.go) and its stabilization
// methods (internal/node/chord/stabilization.go), generalized from the
// teacher's byte-slice Koorde identifiers to the spec's plain uint64
// ring and from its KV-aware LookUp to the textbook find_successor.
type NodeService struct {
	lgr    logger.Logger
	store  *NodeStore
	dialer PeerDialer

	fingerCount       uint
	successorListSize int
	rpcTimeout        time.Duration
}

// New constructs a NodeService for selfAddress, with all fingers and the
// successor list initially pointing at self (the node is alone on the
// ring until Join or a peer's stabilize round discovers it).
func New(selfAddress string, opts ...Option) *NodeService {
	n := &NodeService{
		lgr:               logger.NopLogger{},
		fingerCount:       64,
		successorListSize: 3,
		rpcTimeout:        2 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}

	self := NewHandle(selfAddress)
	n.store = NewNodeStore(self, n.fingerCount, n.successorListSize)
	return n
}

// Self returns the node's own handle.
func (n *NodeService) Self() NodeHandle {
	return n.store.Self()
}

// Successor returns the node's current immediate successor.
func (n *NodeService) Successor() NodeHandle {
	return n.store.Successor()
}

// Predecessor returns the current predecessor and whether it is set.
func (n *NodeService) Predecessor() (NodeHandle, bool) {
	return n.store.Predecessor()
}

// Store exposes the underlying NodeStore, for the task runner and for
// transport adapters that need to answer SuccessorList RPCs.
func (n *NodeService) Store() *NodeStore {
	return n.store
}

// Join contacts bootstrap and adopts the result of its find_successor(self.id)
// as this node's successor. Predecessor is left unset; it is learned via
// stabilize (spec §4.5). The bootstrap handle is consumed only once.
func (n *NodeService) Join(ctx context.Context, bootstrap NodeHandle) error {
	client, err := n.dial(bootstrap)
	if err != nil {
		return NewServiceError(fmt.Sprintf("join: dial bootstrap %s", bootstrap.Endpoint), err)
	}

	rctx, cancel := n.withTimeout(ctx)
	defer cancel()
	succ, err := client.FindSuccessor(rctx, n.store.Self().ID)
	if err != nil {
		return NewServiceError(fmt.Sprintf("join: find_successor against bootstrap %s", bootstrap.Endpoint), err)
	}

	n.store.SetSuccessor(succ)
	n.lgr.Info("join: adopted successor",
		logger.F("bootstrap", bootstrap.Endpoint),
		logger.F("successor", succ.Endpoint))
	return nil
}

// FindSuccessor answers "who is the successor of id?", recursing through
// the finger table over at most one outbound hop per call (spec §4.5).
func (n *NodeService) FindSuccessor(ctx context.Context, id uint64) (NodeHandle, error) {
	snap := n.store.snapshot()

	if Between(id, snap.self.ID, snap.successor.ID) {
		return snap.successor, nil
	}

	target := closestPrecedingFinger(snap, id)
	if target.ID == snap.self.ID {
		// Self is the only candidate the scan found, which means no
		// finger qualifies — identical to the "none qualifies" case.
		// Answer locally rather than looping back an RPC to ourselves
		// (spec §9, "Self-in-finger-table").
		return snap.successor, nil
	}

	client, err := n.dial(target)
	if err != nil {
		return NodeHandle{}, NewServiceError(fmt.Sprintf("find_successor(%s): dial %s", fmtID(id), target.Endpoint), err)
	}

	rctx, cancel := n.withTimeout(ctx)
	defer cancel()
	result, err := client.FindSuccessor(rctx, id)
	if err != nil {
		return NodeHandle{}, NewServiceError(fmt.Sprintf("find_successor(%s): delegate to %s", fmtID(id), target.Endpoint), err)
	}
	return result, nil
}

// closestPrecedingFinger scans fingers from the highest index to the
// lowest and returns the first whose peer lies in the open arc
// (self.id, id). If none qualifies it returns the successor — the
// textbook formulation spec §9 calls out as authoritative, in
// preference to the original's simplified variant that ignores the
// finger table entirely.
func closestPrecedingFinger(snap snapshot, id uint64) NodeHandle {
	for i := len(snap.fingers) - 1; i >= 0; i-- {
		peer := snap.fingers[i].Peer
		if peer.ID == snap.self.ID {
			continue
		}
		if betweenOpen(peer.ID, snap.self.ID, id) {
			return peer
		}
	}
	return snap.successor
}

// betweenOpen reports whether id lies strictly between a and b going
// clockwise, excluding both endpoints.
func betweenOpen(id, a, b uint64) bool {
	if id == a || id == b {
		return false
	}
	if a < b {
		return a < id && id < b
	}
	return a < id || id < b
}

// Notify is invoked by a peer that believes it may be our predecessor.
// If predecessor is unset, or candidate lies in (predecessor.id, self.id],
// candidate is adopted (spec §4.5). Errors are never returned: this is
// maintenance and must never surface a failure to the caller.
func (n *NodeService) Notify(candidate NodeHandle) {
	self := n.store.Self()
	pred, ok := n.store.Predecessor()

	if !ok || Between(candidate.ID, pred.ID, self.ID) {
		n.store.SetPredecessor(candidate)
		n.lgr.Info("notify: adopted predecessor",
			logger.F("candidate", candidate.Endpoint))
	}
}

// Stabilize asks the current successor for its predecessor, adopts it
// as the new successor if it lies in (self.id, successor.id] (the
// half-open Between), then notifies whichever node is now the successor
// of self's existence (spec §4.5). If the successor cannot be dialed or
// its predecessor cannot be fetched, the round returns no error and
// instead walks the successor list for a live replacement
// (stabilizeOverSuccessorList); errors notifying the successor are
// surfaced.
func (n *NodeService) Stabilize(ctx context.Context) error {
	self := n.store.Self()
	succ := n.store.Successor()

	client, err := n.dial(succ)
	if err != nil {
		n.lgr.Warn("stabilize: dial successor failed",
			logger.F("successor", succ.Endpoint), logger.F("error", err.Error()))
		return n.stabilizeOverSuccessorList(ctx)
	}

	rctx, cancel := n.withTimeout(ctx)
	pred, hasPred, err := client.Predecessor(rctx)
	cancel()
	if err != nil {
		n.lgr.Warn("stabilize: predecessor query failed",
			logger.F("successor", succ.Endpoint), logger.F("error", err.Error()))
		return n.stabilizeOverSuccessorList(ctx)
	}

	if hasPred && Between(pred.ID, self.ID, succ.ID) {
		n.store.SetSuccessor(pred)
		succ = pred
		client, err = n.dial(succ)
		if err != nil {
			return NewServiceError(fmt.Sprintf("stabilize: dial new successor %s", succ.Endpoint), err)
		}
	}

	rctx, cancel = n.withTimeout(ctx)
	defer cancel()
	if err := client.Notify(rctx, self); err != nil {
		return NewServiceError(fmt.Sprintf("stabilize: notify %s", succ.Endpoint), err)
	}

	if list, err := client.SuccessorList(rctx); err == nil {
		n.store.SetSuccessorList(append([]NodeHandle{succ}, list...))
	}

	return nil
}

// stabilizeOverSuccessorList is the optional hardening from spec §9's
// Open Question: when the current successor cannot be reached, walk the
// successor list for the next live entry rather than leaving the node
// stuck behind a dead successor until fix_fingers happens to repair it.
func (n *NodeService) stabilizeOverSuccessorList(ctx context.Context) error {
	list := n.store.SuccessorList()
	self := n.store.Self()

	for _, candidate := range list {
		if candidate.ID == n.store.Successor().ID {
			continue
		}
		client, err := n.dial(candidate)
		if err != nil {
			continue
		}
		rctx, cancel := n.withTimeout(ctx)
		pingErr := client.Ping(rctx)
		cancel()
		if pingErr != nil {
			continue
		}
		n.store.SetSuccessor(candidate)
		n.lgr.Info("stabilize: failed over to next live successor",
			logger.F("successor", candidate.Endpoint))
		rctx, cancel = n.withTimeout(ctx)
		_ = client.Notify(rctx, self)
		cancel()
		return nil
	}

	// Nothing in the successor list is reachable either; leave the
	// store as-is and let the next round retry.
	return nil
}

// CheckPredecessor pings the current predecessor, if any, and unsets it
// only on a confirmed ConnectionFailed outcome (spec §4.5, §7) — liveness
// is never inferred from any other kind of failure or from silence.
func (n *NodeService) CheckPredecessor(ctx context.Context) {
	pred, ok := n.store.Predecessor()
	if !ok {
		return
	}

	client, err := n.dial(pred)
	if err != nil {
		if IsConnectionFailed(err) {
			n.store.UnsetPredecessor()
			n.lgr.Info("check_predecessor: predecessor unreachable, unset",
				logger.F("predecessor", pred.Endpoint))
		}
		return
	}

	rctx, cancel := n.withTimeout(ctx)
	pingErr := client.Ping(rctx)
	cancel()
	if pingErr != nil {
		if IsConnectionFailed(pingErr) {
			n.store.UnsetPredecessor()
			n.lgr.Info("check_predecessor: predecessor unreachable, unset",
				logger.F("predecessor", pred.Endpoint))
		}
		return
	}
}

// FixFingers recomputes the authoritative successor of each finger's
// start id, independently: a failure refreshing one entry leaves it
// unchanged and never blocks the others (spec §4.5).
func (n *NodeService) FixFingers(ctx context.Context) {
	count := n.store.FingerCount()
	for i := 0; i < count; i++ {
		f := n.store.Finger(i)
		result, err := n.FindSuccessor(ctx, f.Start)
		if err != nil {
			n.lgr.Warn("fix_fingers: refresh failed",
				logger.F("index", i), logger.F("start", fmtID(f.Start)), logger.F("error", err.Error()))
			continue
		}
		n.store.SetFinger(i, result)
	}
}

func (n *NodeService) dial(peer NodeHandle) (PeerClient, error) {
	if n.dialer == nil {
		return nil, NewUnexpectedClientError("no dialer configured", nil)
	}
	return n.dialer.Dial(peer.Endpoint)
}

// withTimeout bounds ctx by rpcTimeout when the caller supplied no
// deadline of its own (spec §6, rpc_timeout). The returned cancel func
// must always be called.
func (n *NodeService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || n.rpcTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, n.rpcTimeout)
}
