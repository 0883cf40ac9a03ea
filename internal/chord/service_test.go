package chord

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient is a hand-rolled PeerClient test double: each method is
// backed by an optional function field. Left nil, FindSuccessor,
// Successor and SuccessorList return a "not configured" error, while
// Predecessor reports no predecessor and Notify and Ping succeed.
// There is no mocking framework in play here,
// matching the rest of the module's dependency surface.
type stubClient struct {
	findSuccessor func(ctx context.Context, id uint64) (NodeHandle, error)
	successor     func(ctx context.Context) (NodeHandle, error)
	predecessor   func(ctx context.Context) (NodeHandle, bool, error)
	successorList func(ctx context.Context) ([]NodeHandle, error)
	notify        func(ctx context.Context, candidate NodeHandle) error
	ping          func(ctx context.Context) error
}

func (s *stubClient) FindSuccessor(ctx context.Context, id uint64) (NodeHandle, error) {
	if s.findSuccessor == nil {
		return NodeHandle{}, NewUnexpectedClientError("find_successor not configured", nil)
	}
	return s.findSuccessor(ctx, id)
}

func (s *stubClient) Successor(ctx context.Context) (NodeHandle, error) {
	if s.successor == nil {
		return NodeHandle{}, NewUnexpectedClientError("successor not configured", nil)
	}
	return s.successor(ctx)
}

func (s *stubClient) Predecessor(ctx context.Context) (NodeHandle, bool, error) {
	if s.predecessor == nil {
		return NodeHandle{}, false, nil
	}
	return s.predecessor(ctx)
}

func (s *stubClient) SuccessorList(ctx context.Context) ([]NodeHandle, error) {
	if s.successorList == nil {
		return nil, NewUnexpectedClientError("successor_list not configured", nil)
	}
	return s.successorList(ctx)
}

func (s *stubClient) Notify(ctx context.Context, candidate NodeHandle) error {
	if s.notify == nil {
		return nil
	}
	return s.notify(ctx, candidate)
}

func (s *stubClient) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// stubDialer maps endpoints to pre-built PeerClients, and records which
// endpoints were dialed.
type stubDialer struct {
	clients map[string]PeerClient
	dialed  []string
}

func newStubDialer() *stubDialer {
	return &stubDialer{clients: make(map[string]PeerClient)}
}

func (d *stubDialer) Dial(endpoint string) (PeerClient, error) {
	d.dialed = append(d.dialed, endpoint)
	c, ok := d.clients[endpoint]
	if !ok {
		return nil, NewConnectionFailedError(NodeHandle{Endpoint: endpoint}, nil)
	}
	return c, nil
}

func newTestService(selfID uint64, opts ...Option) (*NodeService, *stubDialer) {
	dialer := newStubDialer()
	all := append([]Option{WithDialer(dialer), WithFingerCount(6), WithSuccessorListSize(3)}, opts...)
	svc := New("self", all...)
	// Re-seed self with an explicit id so scenarios can place it at a
	// known ring position, mirroring the wire rule that an id is
	// authoritative once assigned (spec §6).
	svc.store = NewNodeStore(NewHandleWithID(selfID, "self"), svc.fingerCount, svc.successorListSize)
	return svc, dialer
}

func TestFindSuccessorSingleNodeRing(t *testing.T) {
	svc, dialer := newTestService(8)

	got, err := svc.FindSuccessor(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, uint64(8), got.ID)
	assert.Empty(t, dialer.dialed, "single-node ring must answer without any remote call")
}

func TestFindSuccessorTwoNodeRingLocal(t *testing.T) {
	svc, _ := newTestService(8)
	svc.store.SetSuccessor(NewHandleWithID(16, "peer16"))

	got, err := svc.FindSuccessor(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, uint64(16), got.ID)
}

func TestFindSuccessorTwoNodeRingDelegates(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetSuccessor(NewHandleWithID(16, "peer16"))
	svc.store.FillFingers(NewHandleWithID(16, "peer16"))

	dialer.clients["peer16"] = &stubClient{
		findSuccessor: func(ctx context.Context, id uint64) (NodeHandle, error) {
			assert.Equal(t, uint64(2), id)
			return NewHandleWithID(6, "peer6"), nil
		},
	}

	got, err := svc.FindSuccessor(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, uint64(6), got.ID)
}

func TestStabilizeAdoptsCloserSuccessor(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetSuccessor(NewHandleWithID(16, "peer16"))

	var notified []NodeHandle
	notifyClient := &stubClient{
		notify: func(ctx context.Context, candidate NodeHandle) error {
			notified = append(notified, candidate)
			return nil
		},
	}
	dialer.clients["peer16"] = &stubClient{
		predecessor: func(ctx context.Context) (NodeHandle, bool, error) {
			return NewHandleWithID(12, "peer12"), true, nil
		},
	}
	dialer.clients["peer12"] = notifyClient

	err := svc.Stabilize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(12), svc.Successor().ID)
	require.Len(t, notified, 1)
	assert.Equal(t, uint64(8), notified[0].ID)
}

func TestStabilizeKeepsFartherPredecessor(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetSuccessor(NewHandleWithID(16, "peer16"))

	var notified []NodeHandle
	dialer.clients["peer16"] = &stubClient{
		predecessor: func(ctx context.Context) (NodeHandle, bool, error) {
			return NewHandleWithID(1, "peer1"), true, nil
		},
		notify: func(ctx context.Context, candidate NodeHandle) error {
			notified = append(notified, candidate)
			return nil
		},
	}

	err := svc.Stabilize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(16), svc.Successor().ID)
	require.Len(t, notified, 1)
}

// TestStabilizeAdoptsSameIDPredecessor pins down the boundary case spec
// §4.5's half-open between() predicate implies: when the successor's
// reported predecessor shares the successor's own id, it still lies at
// the inclusive upper bound of (self.id, succ.id] and must be adopted —
// unlike the open-interval scan closestPrecedingFinger uses. This only
// has an observable effect when the adopted handle's Endpoint differs
// from the prior successor's, as simulated here.
func TestStabilizeAdoptsSameIDPredecessor(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetSuccessor(NewHandleWithID(16, "peer16-old"))

	var notified []NodeHandle
	refreshedClient := &stubClient{
		notify: func(ctx context.Context, candidate NodeHandle) error {
			notified = append(notified, candidate)
			return nil
		},
	}
	dialer.clients["peer16-old"] = &stubClient{
		predecessor: func(ctx context.Context) (NodeHandle, bool, error) {
			return NewHandleWithID(16, "peer16-new"), true, nil
		},
	}
	dialer.clients["peer16-new"] = refreshedClient

	err := svc.Stabilize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(16), svc.Successor().ID)
	assert.Equal(t, "peer16-new", svc.Successor().Endpoint)
	require.Len(t, notified, 1)
}

func TestCheckPredecessorUnsetsOnConnectionFailed(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetPredecessor(NewHandleWithID(16, "peer16"))
	dialer.clients["peer16"] = &stubClient{
		ping: func(ctx context.Context) error {
			return NewConnectionFailedError(NewHandleWithID(16, "peer16"), nil)
		},
	}

	svc.CheckPredecessor(context.Background())

	_, ok := svc.Predecessor()
	assert.False(t, ok)
}

func TestCheckPredecessorKeepsOnSuccess(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetPredecessor(NewHandleWithID(12, "peer12"))
	dialer.clients["peer12"] = &stubClient{
		ping: func(ctx context.Context) error { return nil },
	}

	svc.CheckPredecessor(context.Background())

	pred, ok := svc.Predecessor()
	require.True(t, ok)
	assert.Equal(t, uint64(12), pred.ID)
}

func TestCheckPredecessorKeepsOnUnexpectedError(t *testing.T) {
	svc, dialer := newTestService(8)
	svc.store.SetPredecessor(NewHandleWithID(8, "self"))
	dialer.clients["self"] = &stubClient{
		ping: func(ctx context.Context) error {
			return NewUnexpectedClientError("transient failure", nil)
		},
	}

	svc.CheckPredecessor(context.Background())

	pred, ok := svc.Predecessor()
	require.True(t, ok)
	assert.Equal(t, uint64(8), pred.ID)
}

func TestFixFingers(t *testing.T) {
	svc, dialer := newTestService(8)

	// self=8, M=6. Starts: 9,10,12,16,24,40.
	initial := NewHandleWithID(14, "node14")
	for i := 0; i < 6; i++ {
		svc.store.SetFinger(i, initial)
	}
	svc.store.SetSuccessor(initial)

	answers := map[uint64]NodeHandle{
		16: NewHandleWithID(19, "node19"),
		24: NewHandleWithID(28, "node28"),
		40: NewHandleWithID(42, "node42"),
	}
	dialer.clients["node14"] = &stubClient{
		findSuccessor: func(ctx context.Context, id uint64) (NodeHandle, error) {
			if want, ok := answers[id]; ok {
				return want, nil
			}
			return NodeHandle{}, NewUnexpectedClientError("unexpected id", nil)
		},
	}

	svc.FixFingers(context.Background())

	wantPeers := []uint64{14, 14, 14, 19, 28, 42}
	wantStarts := []uint64{9, 10, 12, 16, 24, 40}
	for i, f := range svc.store.Fingers() {
		assert.Equalf(t, wantStarts[i], f.Start, "finger %d start", i)
		assert.Equalf(t, wantPeers[i], f.Peer.ID, "finger %d peer", i)
	}
}

func TestFixFingersLeavesFailedEntryUnchanged(t *testing.T) {
	svc, dialer := newTestService(8)
	initial := NewHandleWithID(14, "node14")
	for i := 0; i < 6; i++ {
		svc.store.SetFinger(i, initial)
	}
	svc.store.SetSuccessor(initial)

	dialer.clients["node14"] = &stubClient{
		findSuccessor: func(ctx context.Context, id uint64) (NodeHandle, error) {
			return NodeHandle{}, NewUnexpectedClientError("peer down", nil)
		},
	}

	svc.FixFingers(context.Background())

	for _, f := range svc.store.Fingers() {
		assert.Equal(t, uint64(14), f.Peer.ID)
	}
}

func TestNotifyMonotonicUnderStablePredecessor(t *testing.T) {
	svc, _ := newTestService(20)
	svc.store.SetPredecessor(NewHandleWithID(10, "q"))

	// r = 5 is not in (10, 20]; predecessor must stay q.
	svc.Notify(NewHandleWithID(5, "r"))

	pred, ok := svc.Predecessor()
	require.True(t, ok)
	assert.Equal(t, uint64(10), pred.ID)
}

func TestNotifyAdoptsCandidateInRange(t *testing.T) {
	svc, _ := newTestService(20)
	svc.store.SetPredecessor(NewHandleWithID(10, "q"))

	svc.Notify(NewHandleWithID(15, "r"))

	pred, ok := svc.Predecessor()
	require.True(t, ok)
	assert.Equal(t, uint64(15), pred.ID)
}

func TestJoinAdoptsBootstrapAnswer(t *testing.T) {
	svc, dialer := newTestService(8)
	dialer.clients["bootstrap"] = &stubClient{
		findSuccessor: func(ctx context.Context, id uint64) (NodeHandle, error) {
			return NewHandleWithID(16, "peer16"), nil
		},
	}

	err := svc.Join(context.Background(), NewHandleWithID(0, "bootstrap"))

	require.NoError(t, err)
	assert.Equal(t, uint64(16), svc.Successor().ID)
	_, ok := svc.Predecessor()
	assert.False(t, ok, "join must leave predecessor unset")
}
